package activity

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// TicketPayload is the raw shape a ticket tracker returns.
type TicketPayload struct {
	Key          string    `json:"key" yaml:"key"`
	Assignee     string    `json:"assignee" yaml:"assignee"`
	Summary      string    `json:"summary" yaml:"summary"`
	Description  string    `json:"description" yaml:"description"`
	CommentCount int       `json:"commentCount" yaml:"commentCount"`
	Created      time.Time `json:"created" yaml:"created"`
	Updated      time.Time `json:"updated" yaml:"updated"`
}

// ChangePayload is the raw shape a code host returns for a change request.
type ChangePayload struct {
	Number         int       `json:"number" yaml:"number"`
	Author         string    `json:"author" yaml:"author"`
	Title          string    `json:"title" yaml:"title"`
	Description    string    `json:"description" yaml:"description"`
	Additions      int       `json:"additions" yaml:"additions"`
	Deletions      int       `json:"deletions" yaml:"deletions"`
	ChangedFiles   int       `json:"changedFiles" yaml:"changedFiles"`
	ReviewComments int       `json:"reviewComments" yaml:"reviewComments"`
	LinkedDocs     int       `json:"linkedDocs" yaml:"linkedDocs"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updatedAt"`
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// docHints marks a URL as a documentation reference.
var docHints = []string{"doc", "wiki", "confluence", "notion", "readme", "runbook"}

// countDocLinks counts documentation-looking URLs in free text.
func countDocLinks(text string) int {
	n := 0
	for _, u := range urlPattern.FindAllString(strings.ToLower(text), -1) {
		for _, hint := range docHints {
			if strings.Contains(u, hint) {
				n++
				break
			}
		}
	}
	return n
}

// NormalizeTicket converts a raw ticket payload into an ActivityRecord.
// Missing fields degrade to safe defaults; normalization never fails.
func NormalizeTicket(p TicketPayload) models.ActivityRecord {
	id := p.Key
	if id == "" {
		id = "unknown"
	}
	author := p.Assignee
	if author == "" {
		author = "unknown"
	}
	updated := p.Updated
	if updated.IsZero() {
		updated = p.Created
	}
	return models.ActivityRecord{
		Kind:      models.RecordKindTicket,
		ID:        id,
		Author:    author,
		Title:     p.Summary,
		CreatedAt: p.Created,
		UpdatedAt: updated,
		DocSignal: p.CommentCount,
		DocLinks:  countDocLinks(p.Description),
	}
}

// NormalizeChange converts a raw change-request payload into an ActivityRecord.
func NormalizeChange(p ChangePayload) models.ActivityRecord {
	id := "unknown"
	if p.Number > 0 {
		id = strconv.Itoa(p.Number)
	}
	author := p.Author
	if author == "" {
		author = "unknown"
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = p.CreatedAt
	}
	return models.ActivityRecord{
		Kind:           models.RecordKindChangeRequest,
		ID:             id,
		Author:         author,
		Title:          p.Title,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updated,
		DocSignal:      p.LinkedDocs,
		DocLinks:       p.LinkedDocs + countDocLinks(p.Description),
		Additions:      p.Additions,
		Deletions:      p.Deletions,
		FilesChanged:   p.ChangedFiles,
		ReviewComments: p.ReviewComments,
	}
}
