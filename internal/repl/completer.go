package repl

import (
	"strings"

	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/atinylittleshell/typecomp/internal/repl/input"
	"github.com/atinylittleshell/typecomp/internal/repl/render"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
)

// completionAdapter exposes a completion.Provider to the line editor.
type completionAdapter struct {
	provider completion.Provider
	binding  analysis.Binding
}

var _ input.CompletionProvider = (*completionAdapter)(nil)

func (a *completionAdapter) request(line string, pos int) completion.Request {
	preposing, target, postposing := input.SplitLine(line, pos)
	return completion.Request{
		Preposing:  preposing,
		Target:     target,
		Postposing: postposing,
		Binding:    a.binding,
	}
}

// GetCompletions implements input.CompletionProvider.
func (a *completionAdapter) GetCompletions(line string, pos int) []string {
	return a.provider.Candidates(a.request(line, pos))
}

// GetHelpInfo returns the documentation name of the target under the
// cursor, such as String#upcase.
func (a *completionAdapter) GetHelpInfo(line string, pos int) string {
	ns, ok := a.provider.DocNamespace(a.request(line, pos))
	if !ok {
		return ""
	}
	return ns
}

// renderDocAt renders the documentation panel for the target ending at the
// byte offset pos, for the editor's show-documentation key.
func (r *REPL) renderDocAt(line string, pos int) string {
	namespace := r.tab.HelpInfo(line, pos)
	if namespace == "" {
		return ""
	}
	entry, ok := r.lookupDoc(namespace)
	if !ok {
		return ""
	}
	var b strings.Builder
	render.RenderDoc(&b, entry, r.termWidth())
	return b.String()
}
