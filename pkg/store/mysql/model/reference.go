package model

import "time"

// InputSystem MySQL model for input_systems table (encodings)
type InputSystem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex:idx_input_systems_name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for InputSystem
func (InputSystem) TableName() string {
	return "input_systems"
}

// Provider MySQL model for providers table
type Provider struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex:idx_providers_name" json:"name"`
	ModelName          string    `gorm:"column:model_name;type:varchar(255);not null" json:"model_name"`
	RateLimitPerSecond float64   `gorm:"column:rate_limit_per_second;not null" json:"rate_limit_per_second"`
	MaxConcurrent      int       `gorm:"column:max_concurrent;not null" json:"max_concurrent"`
	CreatedAt          time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;precision:3;not null" json:"updated_at"`
}

// TableName specifies the table name for Provider
func (Provider) TableName() string {
	return "providers"
}

// Instrument MySQL model for instruments table
type Instrument struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShortName   string    `gorm:"column:short_name;type:varchar(64);not null;uniqueIndex:idx_instruments_short_name" json:"short_name"`
	FullName    string    `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	ItemCount   int       `gorm:"column:item_count;not null" json:"item_count"`
	Aggregation string    `gorm:"column:aggregation;type:varchar(16);not null" json:"aggregation"`
	CreatedAt   time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for Instrument
func (Instrument) TableName() string {
	return "instruments"
}

// ProfileSet MySQL model for profile_sets table
type ProfileSet struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_profile_sets_name" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
	Profiles    []Profile `gorm:"foreignKey:ProfileSetID" json:"profiles,omitempty"`
}

// TableName specifies the table name for ProfileSet
func (ProfileSet) TableName() string {
	return "profile_sets"
}

// Profile MySQL model for profiles table
type Profile struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileSetID      int64     `gorm:"column:profile_set_id;not null;uniqueIndex:idx_profiles_set_index,priority:1" json:"profile_set_id"`
	Index             int       `gorm:"column:profile_index;not null;uniqueIndex:idx_profiles_set_index,priority:2" json:"index"`
	Label             string    `gorm:"column:label;type:varchar(255)" json:"label"`
	Openness          int       `gorm:"column:openness;not null" json:"openness"`
	Conscientiousness int       `gorm:"column:conscientiousness;not null" json:"conscientiousness"`
	Extraversion      int       `gorm:"column:extraversion;not null" json:"extraversion"`
	Agreeableness     int       `gorm:"column:agreeableness;not null" json:"agreeableness"`
	Neuroticism       int       `gorm:"column:neuroticism;not null" json:"neuroticism"`
	CreatedAt         time.Time `gorm:"column:created_at;precision:3;not null" json:"created_at"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
