package storage

// UserKey is a search key saved by a user.
type UserKey struct {
	UserID int64  `json:"user_id" db:"tg_user_id"`
	Key    string `json:"key" db:"tender_key"`
	Name   string `json:"name" db:"tender_name"`
}

// DisplayName is the saved name, or the key itself when unnamed.
func (k UserKey) DisplayName() string {
	if k.Name != "" {
		return k.Name
	}
	return k.Key
}

// Subscription pairs a user with a key polled by the sync job.
type Subscription struct {
	UserID int64  `json:"user_id" db:"tg_user_id"`
	Key    string `json:"key" db:"tender_key"`
	Name   string `json:"name,omitempty" db:"tender_name"`
}

// Attachment is one cached tender document link.
type Attachment struct {
	TenderID string `json:"tender_id" db:"tender_id"`
	FileName string `json:"file_name" db:"file_name"`
	URL      string `json:"url" db:"url"`
}
