package watch

import "github.com/nguyentantai21042004/sitwatch/internal/feed"

// cursor is the highest item id already handled by one watch.
type cursor struct {
	id  int64
	set bool
}

type outcome int

const (
	outcomeEmpty outcome = iota
	outcomeBaseline
	outcomeUnchanged
	outcomeRollback
	outcomeAnomaly
	outcomeDelivered
)

func (o outcome) String() string {
	switch o {
	case outcomeEmpty:
		return "empty"
	case outcomeBaseline:
		return "baseline"
	case outcomeUnchanged:
		return "unchanged"
	case outcomeRollback:
		return "rollback"
	case outcomeAnomaly:
		return "anomaly"
	case outcomeDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// diff compares a newest-first snapshot against c. It returns the items newer
// than c in ascending id order together with the cursor to store once they
// have been delivered. The returned cursor is never lower than c.
func diff(c cursor, items []feed.Item) ([]feed.Item, cursor, outcome) {
	if len(items) == 0 {
		return nil, c, outcomeEmpty
	}
	if !strictlyDescending(items) {
		return nil, c, outcomeAnomaly
	}

	latest := items[0].ID
	switch {
	case !c.set:
		return nil, cursor{id: latest, set: true}, outcomeBaseline
	case latest == c.id:
		return nil, c, outcomeUnchanged
	case latest < c.id:
		return nil, c, outcomeRollback
	}

	var fresh []feed.Item
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].ID > c.id {
			fresh = append(fresh, items[i])
		}
	}
	return fresh, cursor{id: latest, set: true}, outcomeDelivered
}

func strictlyDescending(items []feed.Item) bool {
	for i := 1; i < len(items); i++ {
		if items[i].ID >= items[i-1].ID {
			return false
		}
	}
	return true
}
