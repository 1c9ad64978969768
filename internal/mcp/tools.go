package mcp

func userProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "User ID (omit to use the configured default user)",
	}
}

func userOnlySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": userProperty(),
		},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Transitions
		{
			Name:        "clock_in",
			Description: "Start today's work session. Closes any session left open on an earlier day first",
			InputSchema: userOnlySchema(),
		},
		{
			Name:        "clock_out",
			Description: "End today's work session and stamp its total net hours",
			InputSchema: userOnlySchema(),
		},
		{
			Name:        "start_lunch_break",
			Description: "Start the lunch break (one per day)",
			InputSchema: userOnlySchema(),
		},
		{
			Name:        "end_lunch_break",
			Description: "End the open lunch break",
			InputSchema: userOnlySchema(),
		},
		{
			Name:        "start_short_break",
			Description: "Start a short break",
			InputSchema: userOnlySchema(),
		},
		{
			Name:        "end_short_break",
			Description: "End the open short break",
			InputSchema: userOnlySchema(),
		},

		// Reads
		{
			Name:        "get_today",
			Description: "Get today's entry with its status and net worked hours as of now",
			InputSchema: userOnlySchema(),
			ReadOnly:    true,
		},
		{
			Name:        "weekly_report",
			Description: "Get per-day hours for the week containing a date",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProperty(),
					"week_start": map[string]any{
						"type":        "string",
						"description": "Any date in the week (YYYY-MM-DD, omit for the current week)",
					},
				},
			},
			ReadOnly: true,
		},
		{
			Name:        "monthly_report",
			Description: "Get weekly breakdown, total and average daily hours for a month",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProperty(),
					"month": map[string]any{
						"type":        "string",
						"description": "Month (YYYY-MM, omit for the current month)",
					},
				},
			},
			ReadOnly: true,
		},
		{
			Name:        "get_recent_activity",
			Description: "Get recent activity: transitions, stale closes, conflicts and fired reminders, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProperty(),
					"entry_id": map[string]any{
						"type":        "string",
						"description": "Entry ID to filter by",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Activity type to filter by",
						"enum": []string{
							"clock_in", "clock_out", "lunch_started", "lunch_ended", "break_started", "break_ended",
							"stale_closed", "stale_close_failed", "conflict_detected",
							"eye_care_reminder", "clock_out_reminder", "preferences_updated",
						},
					},
					"since": map[string]any{
						"type":        "string",
						"description": "Timestamp to fetch activity since (RFC 3339)",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of activity entries (default 50)",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
			ReadOnly: true,
		},

		// Reminders
		{
			Name:        "get_preferences",
			Description: "Get eye-care and forgot-clock-out reminder preferences",
			InputSchema: userOnlySchema(),
			ReadOnly:    true,
		},
		{
			Name:        "update_preferences",
			Description: "Update reminder preferences. Omitted fields are unchanged",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProperty(),
					"eye_care_enabled": map[string]any{
						"type":        "boolean",
						"description": "Enable the eye-care reminder",
					},
					"eye_care_interval_minutes": map[string]any{
						"type":        "integer",
						"description": "Minutes of active work between eye-care reminders (15-60)",
						"minimum":     15,
						"maximum":     60,
					},
					"clock_out_threshold_hours": map[string]any{
						"type":        "number",
						"description": "Hours after clock-in before the forgot-clock-out reminder fires",
					},
				},
			},
		},
		{
			Name:        "snooze_reminders",
			Description: "Pause reminders for a number of minutes; 0 resumes them immediately",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProperty(),
					"minutes": map[string]any{
						"type":        "integer",
						"description": "Minutes to pause reminders for",
						"minimum":     0,
					},
				},
				"required": []string{"minutes"},
			},
		},

		// Maintenance
		{
			Name:        "close_stale_entries",
			Description: "Close every session still open after its day ended, using the configured stale-close policy",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"as_of": map[string]any{
						"type":        "string",
						"description": "Sweep as of this instant (RFC 3339, omit for now)",
					},
				},
			},
		},
	}
}
