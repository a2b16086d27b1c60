package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailagent/internal/store"
)

// cachedListMsg carries an email list read from the local cache.
type cachedListMsg struct {
	list *store.CachedList
}

// loadCachedList reads the cached list of label off the UI loop. Nothing
// is sent when the cache is disabled or holds no list for label.
func (m *Model) loadCachedList(label string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	st, ctx, logger := m.store, m.ctx, m.logger
	return func() tea.Msg {
		list, err := st.GetEmails(ctx, label)
		if err != nil {
			logger.Warn("reading cached email list", "label", label, "error", err)
			return nil
		}
		if list == nil {
			return nil
		}
		return cachedListMsg{list: list}
	}
}
