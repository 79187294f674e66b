package content

import (
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"gorm.io/datatypes"
)

var (
	ErrContentIDMissing = errors.New("contentId is mandatory")
	ErrNoDataFound      = errors.New("no data found for given id")
	ErrContentNotFound  = errors.New("content: no active content with the given id")
)

// Record is a row of the partner content catalogue. CiosData holds the
// partner document, its "content" member is what enrollments are enriched
// with.
type Record struct {
	ContentID string         `gorm:"column:content_id;primaryKey"`
	IsActive  bool           `gorm:"column:is_active"`
	CiosData  datatypes.JSON `gorm:"column:cios_data"`
	CreatedOn time.Time      `gorm:"column:created_on"`
	UpdatedOn time.Time      `gorm:"column:updated_on"`
}

func (Record) TableName() string {
	return "cios_content_entity"
}

// ContentOf returns the "content" member of a cios_data document, or nil
// when it has none.
func ContentOf(ciosData json.RawMessage) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(ciosData, &doc); err != nil {
		return nil, errors.Annotate(err, "content: decoding cios_data")
	}

	c, ok := doc["content"]
	if !ok || string(c) == "null" {
		return nil, nil
	}

	return c, nil
}
