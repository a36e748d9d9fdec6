package domain

import "time"

// DefaultIcon is stored when a tote is created without an explicit icon.
const DefaultIcon = "Package"

type Tote struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Icon        string  `json:"icon"`
	// CoverImagePath is derived at read time: the earliest-created image
	// for the tote, if any.
	CoverImagePath *string   `json:"cover_image_path,omitempty"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

type ToteImage struct {
	ID        string    `json:"id"`
	ToteID    string    `json:"tote_id"`
	UserID    string    `json:"user_id"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID        string    `json:"id"`
	ToteID    string    `json:"tote_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemImage struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// TotePatch is a partial update: nil fields are left untouched.
type TotePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Icon        *string `json:"icon"`
}

// Empty reports whether no fields were supplied.
func (p TotePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Icon == nil
}

// ItemPatch is a partial update: nil fields are left untouched.
type ItemPatch struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
	Checked  *bool   `json:"checked"`
}

// Empty reports whether no fields were supplied.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Checked == nil
}
