package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/contextiq/contextiq-cli/internal/utils"
	"github.com/contextiq/contextiq-cli/internal/workspace"
)

const noResults = "No relevant content found in this document."

func (m Model) View() string {
	header := m.viewSessionBar()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewRail(), m.viewConversation())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewStatus(), m.viewHelp())
}

func (m Model) viewSessionBar() string {
	who := dimStyle.Render("anonymous · press l to sign in")
	if s := m.snap.Session; s != nil {
		who = successStyle.Render("● ") + s.Label()
		if s.Role != "" {
			who += dimStyle.Render(" (" + s.Role + ")")
		}
	}
	return titleStyle.Render("ContextIQ") + "  " + who
}

func (m Model) viewRail() string {
	var b strings.Builder
	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	c := m.snap.Collection
	switch c.Status {
	case workspace.CollectionLoading:
		b.WriteString(m.spinner.View() + dimStyle.Render(" loading…") + "\n")
	case workspace.CollectionError:
		b.WriteString(errorStyle.Render("could not load documents") + "\n")
	}
	if len(c.Documents) == 0 && c.Status == workspace.CollectionReady {
		if c.Query != "" {
			b.WriteString(dimStyle.Render("no matches"))
		} else {
			b.WriteString(dimStyle.Render("no documents yet (u to upload)"))
		}
	}

	var selectedID string
	if m.snap.Selection != nil {
		selectedID = m.snap.Selection.ID
	}
	for i, d := range c.Documents {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		line := utils.Truncate(d.Title, railWidth-6)
		if d.ID == selectedID {
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	return railStyle.Width(railWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) viewConversation() string {
	var b strings.Builder
	sel := m.snap.Selection
	if sel == nil {
		b.WriteString(dimStyle.Render("Select a document (enter) to start asking questions."))
		return panelStyle.Width(m.convo.Width + 2).Render(b.String())
	}
	b.WriteString(titleStyle.Render(sel.Title) + "\n\n")
	b.WriteString(m.convo.View() + "\n")

	conv := m.snap.Conversation
	switch conv.Status {
	case workspace.ConversationPending:
		b.WriteString(m.spinner.View() + dimStyle.Render(" searching: "+conv.Pending) + "\n")
	case workspace.ConversationError:
		b.WriteString(errorStyle.Render("The last question failed; try again.") + "\n")
	}
	b.WriteString(m.question.View())
	return panelStyle.Width(m.convo.Width + 2).Render(b.String())
}

func (m Model) viewStatus() string {
	switch m.mode {
	case modeUpload:
		return m.path.View()
	case modeLogin:
		return m.email.View() + "\n" + m.password.View()
	}
	if m.status == "" {
		return ""
	}
	if m.isError {
		return errorStyle.Render("✗ " + m.status)
	}
	return successStyle.Render("✓ ") + m.status
}

func (m Model) viewHelp() string {
	var keys string
	switch m.mode {
	case modeSearch:
		keys = "type to search · enter/esc done"
	case modeQuestion:
		keys = "enter ask · tab/esc back"
	case modeUpload:
		keys = "enter upload · esc cancel"
	case modeLogin:
		keys = "tab switch field · enter submit · esc cancel"
	case modeConfirmDelete:
		keys = "y confirm · any other key cancels"
	default:
		keys = "↑/↓ move · enter select · / search · tab ask · u upload · d delete · r refresh"
		if m.snap.Session != nil {
			keys += " · L sign out"
		} else {
			keys += " · l sign in"
		}
		keys += " · q quit"
	}
	return statusBarStyle.Render(keys)
}

// renderTurns lays out the conversation, one block per question.
func renderTurns(conv workspace.Conversation, width int) string {
	if len(conv.Turns) == 0 {
		return dimStyle.Render("No questions yet.")
	}
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for i, t := range conv.Turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("Q: "+t.Question) + "\n")
		if len(t.Chunks) == 0 {
			b.WriteString(warningStyle.Render(noResults) + "\n")
			continue
		}
		for j, ch := range t.Chunks {
			src := orID(ch.SourceTitle, ch.SourceDocumentID)
			b.WriteString(dimStyle.Render(fmt.Sprintf("[%d] %s", j+1, src)) + "\n")
			b.WriteString(wrap.Render(strings.TrimSpace(ch.Content)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
