package models

// Social situations accepted on a mood event. An empty value means not set.
const (
	SituationAlone      = "Alone"
	SituationWithOthers = "With others"
	SituationCrowd      = "Crowd"
	SituationNone       = "None"
)

// MoodEvent is a single logged emotional record.
// Firestore: users/{userId}/moods/{id}. Timestamp is epoch milliseconds.
type MoodEvent struct {
	ID              string  `json:"id" firestore:"id" bson:"_id" gorm:"primaryKey;size:64"`
	UserID          string  `json:"user_id" firestore:"userId" bson:"user_id" gorm:"index;size:128"`
	Username        string  `json:"username" firestore:"username" bson:"username"`
	Mood            string  `json:"mood" firestore:"mood" bson:"mood"`
	Reason          string  `json:"reason" firestore:"reason" bson:"reason"`
	Trigger         string  `json:"trigger" firestore:"trigger" bson:"trigger"`
	SocialSituation string  `json:"social_situation" firestore:"socialSituation" bson:"social_situation"`
	Timestamp       int64   `json:"timestamp" firestore:"timestamp" bson:"timestamp" gorm:"index"`
	Public          bool    `json:"public" firestore:"public" bson:"public" gorm:"index"`
	ImageURI        string  `json:"image_uri,omitempty" firestore:"imageUri" bson:"image_uri,omitempty"`
	HasLocation     bool    `json:"has_location" firestore:"hasLocation" bson:"has_location"`
	Latitude        float64 `json:"latitude,omitempty" firestore:"latitude" bson:"latitude"`
	Longitude       float64 `json:"longitude,omitempty" firestore:"longitude" bson:"longitude"`

	// Existed is set on records read back from a store; never persisted.
	Existed bool `json:"existed" firestore:"-" bson:"-" gorm:"-"`
}

// MoodEventRequest defines the request body for creating or overwriting a mood event
type MoodEventRequest struct {
	Mood            string   `json:"mood" validate:"required,max=50"`
	Reason          string   `json:"reason" validate:"max=200,maxwords=3"`
	Trigger         string   `json:"trigger" validate:"max=200"`
	SocialSituation string   `json:"social_situation" validate:"socialsituation"`
	Timestamp       int64    `json:"timestamp" validate:"min=0"`
	Public          bool     `json:"public"`
	ImageURI        string   `json:"image_uri,omitempty" validate:"omitempty,uri"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Apply copies the request fields onto a mood event, leaving identity fields alone.
func (r *MoodEventRequest) Apply(m *MoodEvent) {
	m.Mood = r.Mood
	m.Reason = r.Reason
	m.Trigger = r.Trigger
	m.SocialSituation = r.SocialSituation
	m.Public = r.Public
	m.ImageURI = r.ImageURI
	if r.Timestamp > 0 {
		m.Timestamp = r.Timestamp
	}
	m.HasLocation = r.Latitude != nil && r.Longitude != nil
	m.Latitude, m.Longitude = 0, 0
	if m.HasLocation {
		m.Latitude = *r.Latitude
		m.Longitude = *r.Longitude
	}
}
