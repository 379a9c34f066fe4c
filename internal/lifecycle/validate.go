package lifecycle

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"maintenance-logbook-backend/internal/model"
)

// NewComplaint is the input for filing a complaint. Images holds references
// returned by the attachment store.
type NewComplaint struct {
	Title       string
	Description string
	Category    model.Category
	Priority    model.Priority
	RoomNumber  string
	Images      []string
}

// textPolicy detects markup in free-text fields.
var textPolicy = bluemonday.StrictPolicy()

// maxUnescape bounds how many layers of entity encoding are peeled off.
const maxUnescape = 4

// cleanText decodes entities and trims s. Text that still carries markup
// once decoded is rejected, never rewritten.
func cleanText(field, s string) (string, error) {
	// The HTML tokenizer folds CR LF to LF; do the same so textarea input
	// compares equal after sanitising.
	plain := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
	for i := 0; i < maxUnescape; i++ {
		next := html.UnescapeString(plain)
		if next == plain {
			break
		}
		plain = next
	}
	plain = strings.TrimSpace(plain)

	if html.UnescapeString(textPolicy.Sanitize(plain)) != plain {
		return "", invalid(field, "must not contain markup")
	}
	return plain, nil
}

// normalize decodes free text and fills defaults, then checks every constraint.
func (in *NewComplaint) normalize(maxImages int) error {
	var err error
	if in.Title, err = cleanText("title", in.Title); err != nil {
		return err
	}
	if in.Description, err = cleanText("description", in.Description); err != nil {
		return err
	}
	if in.RoomNumber, err = cleanText("roomNumber", in.RoomNumber); err != nil {
		return err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	switch {
	case in.Title == "":
		return invalid("title", "is required")
	case in.Description == "":
		return invalid("description", "is required")
	case in.RoomNumber == "":
		return invalid("roomNumber", "is required")
	case !in.Category.Valid():
		return invalid("category", "unknown category %q", in.Category)
	case !in.Priority.Valid():
		return invalid("priority", "unknown priority %q", in.Priority)
	case len(in.Images) > maxImages:
		return invalid("images", "at most %d images are allowed, got %d", maxImages, len(in.Images))
	}
	return nil
}

// CheckImageCount rejects an attachment set before any file is stored.
func CheckImageCount(n, maxImages int) error {
	if n > maxImages {
		return invalid("images", "at most %d images are allowed, got %d", maxImages, n)
	}
	return nil
}
