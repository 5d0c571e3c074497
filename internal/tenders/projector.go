package tenders

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/lookup"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/tenderapi"
)

// DateLayout renders dates in messages and reports.
const DateLayout = "02.01.2006 15:04"

// Fallback phrases for absent values.
const (
	PriceUnspecified   = "не указана"
	ReportPriceUnset   = "не установлена"
	GuaranteeNotNeeded = "не требуется"
	GuaranteePerDocs   = "указано в документации"
	ProvisionUnset     = "не указано"
	SummingUpPerDocs   = "В соответствии с документацией о закупке"
)

const (
	SourceLinkLabel   = "Ссылка на тендер"
	AttachmentsButton = "📎 Документы"
	attachmentsNone   = "📎 Документов нет."
	attachmentsHeader = "<b>📎 Документы:</b>"
)

// Notification is a chat-ready rendering of one tender.
type Notification struct {
	TenderID    string                 `json:"tender_id"`
	Text        string                 `json:"text"`
	Attachments []tenderapi.Attachment `json:"attachments"`
	Button      *Button                `json:"button,omitempty"`
}

// Link is a labelled hyperlink cell.
type Link struct {
	Text string
	URL  string
}

// Amount is a numeric cell that may instead hold a fallback phrase.
type Amount struct {
	Value float64
	Set   bool
	Text  string
}

// Row is one report line; fields map to columns A through R.
type Row struct {
	Published         time.Time // A
	OrderName         string    // B
	Number            string    // C
	OKPD2             string    // D
	Status            string    // E
	TradeType         string    // F
	Source            Link      // G
	Platform          Link      // H
	Price             Amount    // I
	GuaranteeApp      Amount    // J
	GuaranteeContract Amount    // K
	Currency          string    // L
	CloseAt           time.Time // M
	SummingUp         time.Time // N, or SummingUpText when zero
	SummingUpText     string
	GuaranteeProv     Amount // O
	Region            string // P
	Customer          string // Q
	Contacts          string // R
}

// Projector maps tender details to notifications and report rows. It never
// fails: absent fields degrade to empty values or fallback phrases.
type Projector struct {
	loc     *time.Location
	printer *message.Printer
	logger  logging.Logger
}

func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{
		loc:     loc,
		printer: message.NewPrinter(language.English),
		logger:  logging.Component("projector"),
	}
}

func (p *Projector) timeOf(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).In(p.loc)
}

func (p *Projector) formatDate(ms int64) string {
	if ms == 0 {
		return ""
	}
	return p.timeOf(ms).Format(DateLayout)
}

// groupThousands renders n with space-separated thousands: 1234567 -> "1 234 567".
func (p *Projector) groupThousands(n int64) string {
	return strings.ReplaceAll(p.printer.Sprintf("%d", n), ",", " ")
}

// TradeType joins the law label and the procurement method label, leaving
// out whichever is unknown.
func TradeType(d *tenderapi.Detail) string {
	var parts []string
	if code, ok := d.Law.Int(); ok {
		if s, ok := lookup.Law(int(code)); ok {
			parts = append(parts, s)
		}
	}
	if code, ok := d.PlacingWay.Int(); ok {
		if s, ok := lookup.Method(int(code)); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Projector) priceText(d *tenderapi.Detail) string {
	if !d.MaxPrice.Present() {
		return PriceUnspecified
	}
	price, ok := d.MaxPrice.Float()
	if !ok {
		return PriceUnspecified
	}
	return p.groupThousands(int64(math.Trunc(price))) + " " + lookup.CurrencySymbol(d.Currency.String())
}

// Notification renders the message text for d. Attachments travel beside
// the text, not inside it.
func (p *Projector) Notification(d *tenderapi.Detail) Notification {
	lines := []string{
		"№ " + html.EscapeString(d.DisplayNumber()) + "  " + html.EscapeString(d.OrderName.String()),
		"📅 <b>Приём заявок до:</b> " + p.formatDate(d.CloseTime()),
		"💰 <b>Цена:</b> " + p.priceText(d),
	}
	if tt := TradeType(d); tt != "" {
		lines = append(lines, "📂 <b>Тип торгов:</b> "+tt)
	}
	if href := d.Href.String(); href != "" {
		lines = append(lines, `🔗 <a href="`+html.EscapeString(href)+`">`+SourceLinkLabel+`</a>`)
	}

	atts := d.Attachments
	if atts == nil {
		atts = []tenderapi.Attachment{}
	}
	return Notification{
		TenderID:    d.ID,
		Text:        strings.Join(lines, "\n"),
		Attachments: atts,
	}
}

// SubscriptionText prefixes a notification with the subscribed key name.
func SubscriptionText(keyName string, n Notification) string {
	return fmt.Sprintf("🔑 Подписка по ключу: <b>%s</b>\n\n", html.EscapeString(keyName)) + n.Text
}

// AttachmentsText renders the document list shown on request.
func AttachmentsText(atts []storage.Attachment) string {
	if len(atts) == 0 {
		return attachmentsNone
	}
	lines := []string{attachmentsHeader}
	for _, a := range atts {
		lines = append(lines, `— <a href="`+html.EscapeString(a.URL)+`">`+html.EscapeString(a.FileName)+`</a>`)
	}
	return strings.Join(lines, "\n")
}

// StoredAttachments converts API attachments to cache records, dropping
// entries without a link.
func StoredAttachments(tenderID string, atts []tenderapi.Attachment) []storage.Attachment {
	out := make([]storage.Attachment, 0, len(atts))
	for _, a := range atts {
		link := a.Link()
		if link == "" {
			continue
		}
		out = append(out, storage.Attachment{TenderID: tenderID, FileName: a.Name(), URL: link})
	}
	return out
}

func amountOr(v tenderapi.Value, blank func(tenderapi.Value) bool, fallback string) Amount {
	if blank(v) {
		return Amount{Text: fallback}
	}
	if f, ok := v.Float(); ok {
		return Amount{Value: f, Set: true}
	}
	return Amount{Text: v.String()}
}

func blankOnly(v tenderapi.Value) bool   { return v.Blank() }
func blankOrZero(v tenderapi.Value) bool { return v.BlankOrZero() }

// OKPD2 returns the first classifier code: the code (or fv) of the first
// object, the first plain element, or the scalar itself.
func OKPD2(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		var obj struct {
			Code tenderapi.Value `json:"code"`
			FV   tenderapi.Value `json:"fv"`
		}
		if list[0][0] == '{' && json.Unmarshal(list[0], &obj) == nil {
			if code := obj.Code.String(); code != "" {
				return code
			}
			return obj.FV.String()
		}
		raw = list[0]
	}
	var v tenderapi.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v.String()
}

// Row renders the report line for d.
func (p *Projector) Row(d *tenderapi.Detail) Row {
	row := Row{
		Published:         p.timeOf(d.PublicationDate.Millis()),
		OrderName:         d.OrderName.String(),
		Number:            d.DisplayNumber(),
		OKPD2:             OKPD2(d.OKPD2),
		TradeType:         TradeType(d),
		Price:             amountOr(d.MaxPrice, blankOnly, ReportPriceUnset),
		GuaranteeApp:      amountOr(d.GuaranteeApp, blankOrZero, GuaranteeNotNeeded),
		GuaranteeContract: amountOr(d.GuaranteeContract, blankOrZero, GuaranteePerDocs),
		Currency:          d.Currency.String(),
		CloseAt:           p.timeOf(d.CloseTime()),
		GuaranteeProv:     amountOr(d.GuaranteeProv, blankOnly, ProvisionUnset),
	}

	if code, ok := d.StatusCode(); ok {
		row.Status, _ = lookup.Status(int(code))
	}
	if code, ok := d.Region.Int(); ok {
		row.Region, _ = lookup.Region(int(code))
	}
	if href := d.Href.String(); href != "" {
		row.Source = Link{Text: SourceLinkLabel, URL: href}
	}
	if d.Platform != nil {
		row.Platform = Link{Text: d.Platform.Name, URL: d.Platform.Href}
		if row.Platform.Text == "" {
			row.Platform.Text = d.Platform.Href
		}
	}
	if ts := d.SummingUpDateTime.Millis(); ts != 0 {
		row.SummingUp = p.timeOf(ts)
	} else {
		row.SummingUpText = SummingUpPerDocs
	}
	if len(d.Customers) > 0 {
		row.Customer = d.Customers[0].Name.String()
	}

	contacts, err := ParseContacts(d.Contacts.String())
	if err != nil {
		p.logger.Warn("Unreadable contact payload, leaving block empty",
			logging.String("tender_id", d.ID), logging.Err(err))
	}
	row.Contacts = contacts.String()

	return row
}
