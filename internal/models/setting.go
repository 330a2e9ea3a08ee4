package models

// Setting is the key-value store for runtime-tunable configuration.
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`
	ValueJSON JSON   `gorm:"type:json" json:"value"`
}

// TableName sets the table name.
func (Setting) TableName() string {
	return "settings"
}
