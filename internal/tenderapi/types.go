package tenderapi

import "encoding/json"

// Preview is one entry of the paged listing endpoint.
type Preview struct {
	ID                      string `json:"_id"`
	Status                  Value  `json:"status"`
	SubmissionCloseDateTime Value  `json:"submissionCloseDateTime"`
	SubmissionCloseDate     Value  `json:"submissionCloseDate"`
	PublicationDateTime     Value  `json:"publicationDateTime"`
	NoticeNumber            Value  `json:"noticeNumber"`
}

// CloseTime is the application deadline in Unix ms, preferring the
// date-time field and falling back to the date-only one.
func (p Preview) CloseTime() int64 {
	if ts := p.SubmissionCloseDateTime.Millis(); ts != 0 {
		return ts
	}
	return p.SubmissionCloseDate.Millis()
}

// PublishedAt is the publication time in Unix ms, 0 if unknown.
func (p Preview) PublishedAt() int64 {
	return p.PublicationDateTime.Millis()
}

// Customer is one procuring organisation.
type Customer struct {
	Name Value `json:"name"`
}

// Attachment is one tender document.
type Attachment struct {
	DisplayName string `json:"displayName,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	Href        string `json:"href,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Name returns the display name, then the file name, then "Файл".
func (a Attachment) Name() string {
	switch {
	case a.DisplayName != "":
		return a.DisplayName
	case a.FileName != "":
		return a.FileName
	default:
		return "Файл"
	}
}

// Link returns href, falling back to url.
func (a Attachment) Link() string {
	if a.Href != "" {
		return a.Href
	}
	return a.URL
}

// Platform is the electronic trading platform hosting the tender.
type Platform struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Detail is the full tender record. Every field is optional.
type Detail struct {
	ID                      string          `json:"_id"`
	Number                  Value           `json:"number"`
	NoticeNumber            Value           `json:"noticeNumber"`
	OrderName               Value           `json:"orderName"`
	Status                  Value           `json:"status"`
	PreviewStatus           Value           `json:"_preview_status"`
	Law                     Value           `json:"type"`
	PlacingWay              Value           `json:"placingWay"`
	Region                  Value           `json:"region"`
	Currency                Value           `json:"currency"`
	MaxPrice                Value           `json:"maxPrice"`
	GuaranteeApp            Value           `json:"guaranteeApp"`
	GuaranteeContract       Value           `json:"guaranteeContract"`
	GuaranteeProv           Value           `json:"guaranteeProv"`
	PublicationDate         Value           `json:"publicationDate"`
	SubmissionCloseDateTime Value           `json:"submissionCloseDateTime"`
	SubmissionCloseDate     Value           `json:"submissionCloseDate"`
	SummingUpDateTime       Value           `json:"summingUpDateTime"`
	OKPD2                   json.RawMessage `json:"okpd2,omitempty"`
	Contacts                Value           `json:"json"`
	Customers               []Customer      `json:"customers,omitempty"`
	Attachments             []Attachment    `json:"attachments"`
	Href                    Value           `json:"href"`
	Platform                *Platform       `json:"platform,omitempty"`

	// Stub marks a placeholder built after the detail could not be fetched.
	Stub bool `json:"-"`
}

// CloseTime mirrors Preview.CloseTime for the detail record.
func (d *Detail) CloseTime() int64 {
	if ts := d.SubmissionCloseDateTime.Millis(); ts != 0 {
		return ts
	}
	return d.SubmissionCloseDate.Millis()
}

// StatusCode returns the detail status, falling back to the status copied
// from the preview that triggered the fetch.
func (d *Detail) StatusCode() (int64, bool) {
	if n, ok := d.Status.Int(); ok {
		return n, true
	}
	return d.PreviewStatus.Int()
}

// DisplayNumber is the registry number, or the identifier when absent.
func (d *Detail) DisplayNumber() string {
	if !d.Number.Blank() {
		return d.Number.String()
	}
	return d.ID
}

// EnrichFrom copies preview fields the detail lacks.
func (d *Detail) EnrichFrom(p Preview) {
	if d.ID == "" {
		d.ID = p.ID
	}
	d.PreviewStatus = p.Status
	if d.PublicationDate.Millis() == 0 && p.PublicationDateTime.Present() {
		d.PublicationDate = p.PublicationDateTime
	}
}

// StubFromPreview builds the minimal record used when the detail is unavailable.
func StubFromPreview(p Preview) *Detail {
	notice := p.NoticeNumber
	if notice.Blank() {
		notice = StringValue("—")
	}
	publication := p.PublicationDateTime
	if !publication.Present() {
		publication = IntValue(0)
	}
	return &Detail{
		ID:              p.ID,
		NoticeNumber:    notice,
		PublicationDate: publication,
		PreviewStatus:   p.Status,
		Attachments:     []Attachment{},
		Stub:            true,
	}
}

// Key is a saved search defined in the tender service.
type Key struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
