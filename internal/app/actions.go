package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/credential"
	"github.com/nhle/mailagent/internal/result"
	"github.com/nhle/mailagent/internal/store"
	"github.com/nhle/mailagent/internal/task"
	"github.com/nhle/mailagent/internal/ui/compose"
)

// openedEmail is everything the reader shows for one message.
type openedEmail struct {
	email       backend.EmailDetails
	threadCount int
	suggestions []string
}

// offline reports whether err means the backend could not be reached, in
// which case the cached list is worth showing.
func offline(err *apierr.Error) bool {
	switch err.Category() {
	case apierr.CategoryNetwork, apierr.CategoryTimeout:
		return true
	}
	return false
}

// storeError wraps a local cache failure.
func storeError(err error) *apierr.Error {
	return apierr.New("Local cache error: "+err.Error(), 0, nil).WithCause(err)
}

// checkAction turns a response with success=false into a failure.
func checkAction(
	res result.Result[backend.ActionResponse],
	fallback string,
) result.Result[backend.ActionResponse] {
	return result.Then(res, func(r backend.ActionResponse) result.Result[backend.ActionResponse] {
		if !r.Success {
			msg := r.Message
			if msg == "" {
				msg = fallback
			}
			return result.Failure[backend.ActionResponse](apierr.New(msg, 0, nil))
		}
		return result.Success(r)
	})
}

// refreshList fetches the current folder. On a connectivity failure the
// cached copy is shown, marked offline, next to the error.
func (m *Model) refreshList() {
	label := m.inbox.Label()
	var cached *store.CachedList

	task.Submit(m.runner, task.Spec[[]backend.EmailMetadata]{
		Name:   "list emails",
		Status: "Loading " + backend.FolderName(label) + "...",
		Work: func(ctx context.Context) result.Result[[]backend.EmailMetadata] {
			res := m.backend.ListEmails(ctx, label, m.cfg.Display.MaxEmails)
			if m.store == nil {
				return res
			}
			if emails, ok := res.Data(); ok {
				if err := m.store.ReplaceEmails(ctx, label, emails); err != nil {
					m.logger.Warn("caching email list", "label", label, "error", err)
				}
				return res
			}
			if offline(res.Err()) {
				list, err := m.store.GetEmails(ctx, label)
				if err != nil {
					m.logger.Warn("reading cached email list", "label", label, "error", err)
				}
				cached = list
			}
			return res
		},
		OnSuccess: func(emails []backend.EmailMetadata) {
			if m.inbox.Label() == label {
				m.inbox.SetEmails(emails, false)
			}
		},
		OnFailure: func(err *apierr.Error) {
			if cached != nil && m.inbox.Label() == label {
				m.inbox.SetEmails(cached.Emails, true)
			}
			m.runner.Alert(err)
		},
		Disable: []task.Control{&m.inbox},
	})
}

// switchFolder shows another label: the cached copy first, then a fresh
// fetch.
func (m *Model) switchFolder(label string) {
	m.currentView = ViewInbox
	m.inbox.SetLabel(label)
	m.after(m.loadCachedList(m.inbox.Label()))
	m.refreshList()
}

// openEmail loads a message with its thread size and any cached
// suggestions, then marks it read.
func (m *Model) openEmail(id string) {
	task.Submit(m.runner, task.Spec[openedEmail]{
		Name:   "open email",
		Status: "Opening message...",
		Work: func(ctx context.Context) result.Result[openedEmail] {
			return result.Map(m.backend.EmailDetails(ctx, id), func(e backend.EmailDetails) openedEmail {
				out := openedEmail{email: e, threadCount: 1}
				if e.ThreadID != "" {
					if ids, ok := m.backend.ThreadMessages(ctx, e.ThreadID).Data(); ok {
						out.threadCount = len(ids)
					}
				}
				if m.store != nil {
					s, err := m.store.GetSuggestions(ctx, e.ID)
					if err != nil {
						m.logger.Warn("reading cached suggestions", "email", e.ID, "error", err)
					}
					out.suggestions = s
				}
				return out
			})
		},
		OnSuccess: func(o openedEmail) {
			m.reader.SetEmail(o.email)
			m.reader.SetThreadCount(o.threadCount)
			m.reader.SetSuggestions(o.email.ID, o.suggestions)
			m.currentView = ViewReader
			if m.isUnread(o.email.ID) {
				m.setUnread(o.email.ID, false)
			}
		},
		Disable: []task.Control{&m.inbox},
	})
}

// loadSuggestions asks the AI service for replies to the open message.
func (m *Model) loadSuggestions(id string) {
	m.reader.SetLoading(true)
	task.Submit(m.runner, task.Spec[[]string]{
		Name:   "reply suggestions",
		Status: "Generating reply suggestions...",
		Work: func(ctx context.Context) result.Result[[]string] {
			res := m.backend.Suggestions(ctx, id)
			if s, ok := res.Data(); ok && m.store != nil {
				if err := m.store.SaveSuggestions(ctx, id, s); err != nil {
					m.logger.Warn("caching suggestions", "email", id, "error", err)
				}
			}
			return res
		},
		OnSuccess: func(s []string) {
			m.reader.SetLoading(false)
			m.reader.SetSuggestions(id, s)
			if len(s) == 0 {
				m.status.Notify("No suggestions for this message")
			}
		},
		OnFailure: func(err *apierr.Error) {
			m.reader.SetLoading(false)
			m.runner.Alert(err)
		},
		Disable: []task.Control{&m.reader},
	})
}

func (m *Model) archive(id string) {
	m.removeEmail("archive email", "Archiving...", "Archived", id, m.backend.ArchiveEmail)
}

func (m *Model) deleteEmail(id string) {
	m.removeEmail("delete email", "Moving to trash...", "Moved to trash", id, m.backend.DeleteEmail)
}

// removeEmail runs an action that takes a message out of the current
// folder, both remotely and in the cache.
func (m *Model) removeEmail(
	name, status, notice, id string,
	call func(ctx context.Context, id string) result.Result[backend.ActionResponse],
) {
	task.Submit(m.runner, task.Spec[backend.ActionResponse]{
		Name:   name,
		Status: status,
		Work: func(ctx context.Context) result.Result[backend.ActionResponse] {
			res := checkAction(call(ctx, id), "Failed to "+name)
			if res.IsSuccess() && m.store != nil {
				if err := m.store.RemoveEmail(ctx, id); err != nil {
					m.logger.Warn("removing cached email", "email", id, "error", err)
				}
			}
			return res
		},
		OnSuccess: func(backend.ActionResponse) {
			m.inbox.Remove(id)
			if e, ok := m.reader.Email(); ok && e.ID == id && m.currentView == ViewReader {
				m.currentView = ViewInbox
			}
			m.status.Notify(notice)
		},
		Disable: []task.Control{&m.inbox, &m.reader},
	})
}

// setUnread adds or removes the UNREAD label.
func (m *Model) setUnread(id string, unread bool) {
	call := m.backend.MarkRead
	if unread {
		call = m.backend.MarkUnread
	}
	task.Submit(m.runner, task.Spec[backend.ActionResponse]{
		Name: "modify labels",
		Work: func(ctx context.Context) result.Result[backend.ActionResponse] {
			return call(ctx, id)
		},
		OnSuccess: func(backend.ActionResponse) {
			m.inbox.SetUnread(id, unread)
		},
	})
}

func (m *Model) startCompose() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewCompose
	return m.compose.StartNew(m.signature)
}

// send delivers a draft. A draft that fails to send is kept locally and
// the form reopens with it.
func (m *Model) send(d backend.Draft, draftID string) {
	if err := compose.ValidateDraft(d); err != nil {
		m.runner.Alert(err)
		m.after(m.compose.StartDraft(draftID, d))
		return
	}

	savedID := draftID
	task.Submit(m.runner, task.Spec[backend.ActionResponse]{
		Name:   "send email",
		Status: "Sending...",
		Work: func(ctx context.Context) result.Result[backend.ActionResponse] {
			res := checkAction(m.backend.SendEmail(ctx, d), "Failed to send email")
			if m.store == nil {
				return res
			}
			if res.IsSuccess() {
				if draftID != "" {
					if err := m.store.DeleteDraft(ctx, draftID); err != nil {
						m.logger.Warn("deleting sent draft", "draft", draftID, "error", err)
					}
				}
				return res
			}
			saved, err := m.store.SaveDraft(ctx, store.Draft{ID: draftID, Draft: d})
			if err != nil {
				m.logger.Warn("keeping unsent draft", "error", err)
				return res
			}
			savedID = saved.ID
			return res
		},
		OnSuccess: func(backend.ActionResponse) {
			m.currentView = m.previousView
			m.status.Notify("Message sent")
		},
		OnFailure: func(err *apierr.Error) {
			m.runner.Alert(err)
			m.after(m.compose.StartDraft(savedID, d))
		},
		Disable: []task.Control{&m.compose},
	})
}

// saveDraft keeps a draft in the local cache.
func (m *Model) saveDraft(d backend.Draft, draftID string) {
	if m.store == nil {
		m.currentView = m.previousView
		m.status.Alert("Error", "Drafts need the local cache, which is disabled.")
		return
	}

	task.Submit(m.runner, task.Spec[store.Draft]{
		Name:   "save draft",
		Status: "Saving draft...",
		Work: func(ctx context.Context) result.Result[store.Draft] {
			saved, err := m.store.SaveDraft(ctx, store.Draft{ID: draftID, Draft: d})
			if err != nil {
				return result.Failure[store.Draft](storeError(err))
			}
			return result.Success(saved)
		},
		OnSuccess: func(store.Draft) {
			m.currentView = m.previousView
			m.status.Notify("Draft saved")
		},
		OnFailure: func(err *apierr.Error) {
			m.runner.Alert(err)
			m.after(m.compose.StartDraft(draftID, d))
		},
		Disable: []task.Control{&m.compose},
	})
}

// openLatestDraft reopens the most recently saved draft.
func (m *Model) openLatestDraft() {
	if m.store == nil {
		m.status.Notify("No drafts: the local cache is disabled")
		return
	}

	task.Submit(m.runner, task.Spec[[]store.Draft]{
		Name: "load drafts",
		Work: func(ctx context.Context) result.Result[[]store.Draft] {
			drafts, err := m.store.GetDrafts(ctx)
			if err != nil {
				return result.Failure[[]store.Draft](storeError(err))
			}
			return result.Success(drafts)
		},
		OnSuccess: func(drafts []store.Draft) {
			if len(drafts) == 0 {
				m.status.Notify("No drafts")
				return
			}
			d := drafts[0]
			m.previousView = m.currentView
			m.currentView = ViewCompose
			m.after(m.compose.StartDraft(d.ID, d.Draft))
		},
	})
}

// loadSignature fetches the signature appended to new messages. Failure
// only leaves new messages unsigned.
func (m *Model) loadSignature() {
	task.Submit(m.runner, task.Spec[string]{
		Name: "load signature",
		Work: func(ctx context.Context) result.Result[string] {
			return m.backend.Signature(ctx)
		},
		OnSuccess: func(s string) { m.signature = s },
		OnFailure: func(err *apierr.Error) {
			m.logger.Warn("loading signature", "category", err.Category(), "error", err.Message())
		},
	})
}

// login starts the OAuth flow on the backend host.
func (m *Model) login() {
	task.Submit(m.runner, task.Spec[backend.LoginResponse]{
		Name:   "login",
		Status: "Starting Gmail login...",
		Work: func(ctx context.Context) result.Result[backend.LoginResponse] {
			return m.backend.InitiateLogin(ctx)
		},
		OnSuccess: func(r backend.LoginResponse) {
			if !r.Success {
				msg := r.Message
				if msg == "" {
					msg = "Login could not be started."
				}
				m.status.Alert("Error", msg)
				return
			}
			msg := r.Message
			if msg == "" {
				msg = "Complete the login in the browser opened by the backend"
			}
			m.status.Notify(msg)
			if m.monitor != nil {
				m.monitor.Refresh()
			}
		},
	})
}

// openSettings loads the backend settings into the settings form.
func (m *Model) openSettings() {
	task.Submit(m.runner, task.Spec[backend.ConfigData]{
		Name:   "load settings",
		Status: "Loading settings...",
		Work: func(ctx context.Context) result.Result[backend.ConfigData] {
			return m.backend.Config(ctx)
		},
		OnSuccess: func(cfg backend.ConfigData) {
			if m.currentView != ViewSettings {
				m.previousView = m.currentView
			}
			m.currentView = ViewSettings
			m.after(m.settings.Start(cfg))
		},
	})
}

// saveSettings stores the backend settings, then the signature, then the
// API key when one was entered.
func (m *Model) saveSettings(cfg backend.ConfigData, apiKey string) {
	task.Submit(m.runner, task.Spec[bool]{
		Name:   "save settings",
		Status: "Saving settings...",
		Work: func(ctx context.Context) result.Result[bool] {
			res := result.Then(m.backend.SaveConfig(ctx, cfg), func(bool) result.Result[bool] {
				return result.Then(m.backend.SaveSignature(ctx, cfg.User.Signature), func(ok bool) result.Result[bool] {
					if !ok {
						return result.Failure[bool](apierr.New("Failed to save signature", 0, nil))
					}
					return result.Success(true)
				})
			})
			if !res.IsSuccess() || apiKey == "" || m.creds == nil {
				return res
			}
			if err := m.creds.SaveAPIKey(credential.BackendService, apiKey); err != nil {
				return result.Failure[bool](apierr.New("Saving API key: "+err.Error(), 0, nil).WithCause(err))
			}
			return res
		},
		OnSuccess: func(bool) {
			m.signature = cfg.User.Signature
			m.currentView = ViewInbox
			if apiKey != "" && m.creds != nil {
				m.status.Notify("Settings saved. Restart to use the new API key")
				return
			}
			m.status.Notify("Settings saved")
		},
		OnFailure: func(err *apierr.Error) {
			m.runner.Alert(err)
			m.after(m.settings.Start(cfg))
		},
		Disable: []task.Control{&m.settings},
	})
}

// storeToken saves the backend API key in the keyring, or removes it
// when key is empty. The running client keeps its token until restart.
func (m *Model) storeToken(key string) {
	if m.creds == nil {
		m.status.Alert("Error", "The system keyring is not available.")
		return
	}

	task.Submit(m.runner, task.Spec[bool]{
		Name: "store api key",
		Work: func(context.Context) result.Result[bool] {
			var err error
			if key == "" {
				err = m.creds.RemoveAPIKey(credential.BackendService)
			} else {
				err = m.creds.SaveAPIKey(credential.BackendService, key)
			}
			if err != nil {
				return result.Failure[bool](apierr.New("Keyring error: "+err.Error(), 0, nil).WithCause(err))
			}
			return result.Success(true)
		},
		OnSuccess: func(bool) {
			if key == "" {
				m.status.Notify("API key removed. Restart to apply")
				return
			}
			m.status.Notify("API key stored. Restart to use it")
		},
	})
}
