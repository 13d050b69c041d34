package app

// firstID returns the first non-zero id of the fallback chain, 0 when
// every link is unset. Used for tracker/priority/assignee resolution:
// control point first, then scope settings, then the system default.
func firstID(ids ...int64) int64 {
	for _, id := range ids {
		if id != 0 {
			return id
		}
	}
	return 0
}

// resolveAuthorID picks the acting author for generated issues: the
// explicitly configured author wins, then the current actor, then the
// system fallback.
func resolveAuthorID(configured, actor, system int64) int64 {
	return firstID(configured, actor, system)
}
