package domain

import "time"

// Product holds one uploaded product and the output of every pipeline stage.
// An empty stage column means the stage has not produced output yet; failed
// generations leave the column untouched so a retry needs no cleanup.
type Product struct {
	ID                 int64     `json:"id,string" form:"id"`
	UserId             int64     `gorm:"index" json:"user_id,string" form:"user_id"`
	Name               string    `gorm:"index;size:256" json:"name" form:"name"`
	RawText            string    `gorm:"type:text" json:"raw_text"`
	ImageBase64        string    `gorm:"type:text" json:"image_base64,omitempty"`
	MarketAnalysis     string    `gorm:"type:text" json:"market_analysis"`
	ProductPageContent string    `gorm:"type:text" json:"product_page_content"`
	ImagePrompts       string    `gorm:"type:text" json:"image_prompts"`
	AdCopy             string    `gorm:"type:text" json:"ad_copy"`
	GeneratedImages    string    `gorm:"type:text" json:"-"` // JSON array of data URIs
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ProductListItem is the light projection used by list views; the stage text
// columns are heavy and excluded on purpose.
type ProductListItem struct {
	ID        int64     `json:"id,string"`
	UserId    int64     `json:"user_id,string"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
