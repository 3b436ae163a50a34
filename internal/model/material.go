package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Material access-control modes.
const (
	AccessPurchased  = "purchased"
	AccessFree       = "free"
	AccessRestricted = "restricted"
)

// MaterialFile is one stored file (PDF) belonging to a material.
type MaterialFile struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
}

// MaterialFiles is the file list of a material (JSONB)
type MaterialFiles []MaterialFile

// Material is a standalone purchasable learning resource that may also be
// bundled into one or more courses.
type Material struct {
	MaterialID    string        `db:"id" json:"material_id"`
	Title         string        `db:"title" json:"title"`
	Price         int           `db:"price" json:"price"`
	ImageURL      string        `db:"image_url" json:"image_url"`
	AccessControl string        `db:"access_control" json:"access_control"`
	ForCourses    []string      `db:"for_courses" json:"for_courses"`
	Files         MaterialFiles `db:"files" json:"files"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// MaterialPurchase is a standalone material purchase attempt, approved by an
// admin the same way course enrollments are.
type MaterialPurchase struct {
	PurchaseID    string    `db:"id" json:"purchase_id"`
	MaterialID    string    `db:"material_id" json:"material_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Value implements the driver.Valuer interface for JSONB
func (m MaterialFiles) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal([]MaterialFile{})
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for JSONB
func (m *MaterialFiles) Scan(value interface{}) error {
	if value == nil {
		*m = make(MaterialFiles, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(MaterialFiles, 0)
		return fmt.Errorf("cannot scan %T into MaterialFiles", value)
	}

	if len(bytes) == 0 {
		*m = make(MaterialFiles, 0)
		return nil
	}

	return json.Unmarshal(bytes, m)
}
