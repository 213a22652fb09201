package models

import "time"

// CalendarEvent is a single entry in a user's calendar, ordered by start time
// ascending for display.
type CalendarEvent struct {
	ID          string    `json:"id" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description,omitempty" firestore:"description"`
	Subject     string    `json:"subject,omitempty" firestore:"subject"`
	Type        string    `json:"type,omitempty" firestore:"type"`
	OwnerID     string    `json:"ownerId" firestore:"ownerId"`
	Start       time.Time `json:"start" firestore:"start"`
	End         time.Time `json:"end,omitempty" firestore:"end"`
}

// EventFromDoc decodes a raw document into a CalendarEvent.
func EventFromDoc(id string, doc map[string]interface{}) CalendarEvent {
	return CalendarEvent{
		ID:          id,
		Title:       docString(doc, "title", ""),
		Description: docString(doc, "description", ""),
		Subject:     docString(doc, "subject", ""),
		Type:        docString(doc, "type", ""),
		OwnerID:     docString(doc, "ownerId", ""),
		Start:       docTime(doc, "start", time.Time{}),
		End:         docTime(doc, "end", time.Time{}),
	}
}
