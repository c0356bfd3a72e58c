package walker

import "fmt"

// processFile tests one file name and reports it when it matches. The index
// is only consumed once onMatch succeeds.
func (w *walk) processFile(path, name string) error {
	if w.matcher != nil && !w.matcher.MatchName(name) {
		return nil
	}

	m := Match{Index: w.stats.Matches + 1, Path: path, Name: name}
	w.options.Logger.Debug("Walker: Match #%d [%s]", m.Index, path)

	if w.onMatch != nil {
		if err := w.onMatch(m); err != nil {
			return fmt.Errorf("walker: reporting match %d (%s): %w", m.Index, path, err)
		}
	}
	w.stats.Matches = m.Index
	return nil
}
