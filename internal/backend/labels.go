package backend

// Gmail system labels the client navigates between.
const (
	LabelInbox   = "INBOX"
	LabelStarred = "STARRED"
	LabelSent    = "SENT"
	LabelDraft   = "DRAFT"
	LabelSpam    = "SPAM"
	LabelTrash   = "TRASH"
	LabelUnread  = "UNREAD"
)

// Folder is a navigable label with its display name.
type Folder struct {
	ID   string
	Name string
}

var folders = []Folder{
	{LabelInbox, "Inbox"},
	{LabelStarred, "Starred"},
	{LabelSent, "Sent"},
	{LabelDraft, "Drafts"},
	{LabelSpam, "Spam"},
	{LabelTrash, "Trash"},
}

// Folders returns the navigable folders in display order.
func Folders() []Folder {
	out := make([]Folder, len(folders))
	copy(out, folders)
	return out
}

// FolderName returns the display name for a label ID, or the ID itself
// when it is not a known folder.
func FolderName(labelID string) string {
	for _, f := range folders {
		if f.ID == labelID {
			return f.Name
		}
	}
	return labelID
}
