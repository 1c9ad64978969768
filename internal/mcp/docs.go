package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `timeclock tracks one work session per user per day and derives net worked hours.

Model:
- Entry: one per (user, date). Status is NOT_STARTED, CLOCKED_IN, ON_LUNCH, ON_BREAK or CLOCKED_OUT.
- Breaks: one lunch break per day plus any number of short breaks. Only one break can be open.
- Net hours: clock-in to clock-out (or now) minus breaks. An open break is deducted up to now.

Workflow:
1) get_today to see the status before changing it.
2) clock_in, then start_/end_lunch_break and start_/end_short_break as needed, then clock_out.
3) weekly_report / monthly_report for totals. get_recent_activity for the audit trail.
4) get_preferences / update_preferences / snooze_reminders control eye-care and forgot-clock-out reminders.

Errors come back as {"error": {"code", "message", "recovery_hint"}}. CONFLICT means another client changed
the entry first: call get_today and decide whether to retry.

Docs:
- timeclock://docs/states (state machine and error codes)
- timeclock://docs/reminders (when reminders fire)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "timeclock://docs/states",
		Name:        "docs_states",
		Title:       "Entry states and transitions",
		Description: "The per-day state machine, which tool moves between which states, and the error codes.",
		Content: `# Entry states

| From        | Tool              | To          |
|-------------|-------------------|-------------|
| NOT_STARTED | clock_in          | CLOCKED_IN  |
| CLOCKED_IN  | start_lunch_break | ON_LUNCH    |
| ON_LUNCH    | end_lunch_break   | CLOCKED_IN  |
| CLOCKED_IN  | start_short_break | ON_BREAK    |
| ON_BREAK    | end_short_break   | CLOCKED_IN  |
| CLOCKED_IN  | clock_out         | CLOCKED_OUT |

Anything else fails and leaves the entry unchanged:

- ` + "`NO_ACTIVE_SESSION`" + `: clock_out without clocking in, or ending a break that is not open.
- ` + "`ALREADY_ON_BREAK`" + `: starting a break while one is open.
- ` + "`LUNCH_ALREADY_TAKEN`" + `: a second lunch on the same day.
- ` + "`INVALID_TRANSITION`" + `: e.g. clock_out while on a break, or clock_in after clocking out today.
- ` + "`CONFLICT`" + `: the entry changed between read and write; nothing was written.
- ` + "`STORE_UNAVAILABLE`" + `: the store failed; this is never reported as "no entry".

A day still open after midnight is closed by the stale sweep (close_stale_entries) and marked auto_closed.
`,
	},
	{
		URI:         "timeclock://docs/reminders",
		Name:        "docs_reminders",
		Title:       "Reminders",
		Description: "Eye-care and forgot-clock-out reminder rules.",
		Content: `# Reminders

- Eye care: fires while CLOCKED_IN once the configured interval (15-60 minutes, default 20) has passed since
  the later of the last eye-care reminder and the start of the current stretch of work (clock-in or end of
  the latest break). Never during a break.
- Forgot clock-out: fires once per session when CLOCKED_IN for longer than the threshold (default 10 hours).
  Clocking out re-arms it.
- snooze_reminders pauses both for the given minutes. A reminder that came due while snoozed fires on the
  first check after the snooze ends.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
