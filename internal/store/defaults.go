package store

// DefaultPreferences is the initial preferences document.
func DefaultPreferences() map[string]any {
	return map[string]any{
		"user_email": "",
		"work_hours": map[string]any{
			"start": "09:00",
			"end":   "17:00",
		},
		"availability": map[string]any{
			"monday":    true,
			"tuesday":   true,
			"wednesday": true,
			"thursday":  true,
			"friday":    true,
			"saturday":  false,
			"sunday":    false,
		},
		"preferred_meeting_duration_minutes": 30,
		"busy_keywords":                      []any{"busy", "meeting", "unavailable"},
		"auto_reply_preferences": map[string]any{
			"draft_replies":          true,
			"auto_suggest_times":     true,
			"include_calendar_check": true,
		},
		"email_signature": "Best regards,\nYour Assistant",
	}
}

// DefaultMemory is the initial memory document.
func DefaultMemory() map[string]any {
	return map[string]any{
		"preferences_memory":   map[string]any{},
		"conversation_context": []any{},
		"user_facts":           map[string]any{},
		"meeting_patterns":     []any{},
		"email_patterns":       []any{},
		"important_contacts":   []any{},
		"version":              1,
	}
}
