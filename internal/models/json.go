package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// jsonDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func jsonDataType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}

// Value encodes the specs as a JSON object
func (s Specs) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes a JSON object written by Value. NULL and empty columns decode to zero specs.
func (s *Specs) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = Specs{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("specs: unsupported column type %T", value)
	}
	if len(data) == 0 || string(data) == "null" {
		*s = Specs{}
		return nil
	}
	var decoded Specs
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("specs: %w", err)
	}
	*s = decoded
	return nil
}

// GormDataType gorm common data type
func (Specs) GormDataType() string {
	return "json"
}

// GormDBDataType gorm db data type
func (Specs) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDataType(db)
}
