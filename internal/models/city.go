package models

// City — город из справочника подсказок для диалогов поиска и создания поездки.
type City struct {
	Name      string `yaml:"name" json:"name"`
	Region    string `yaml:"region" json:"region"`
	SortOrder int64  `yaml:"sort_order" json:"sort_order"`
}
