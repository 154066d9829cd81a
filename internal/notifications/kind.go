package notifications

import "fmt"

type notificationKind int

const (
	kindTaskCompleted notificationKind = iota
	kindTaskReopened
)

func kindOf(completed bool) notificationKind {
	if completed {
		return kindTaskCompleted
	}
	return kindTaskReopened
}

func (k notificationKind) body(member, title string) string {
	switch k {
	case kindTaskCompleted:
		return fmt.Sprintf("%s completed %q", member, title)
	case kindTaskReopened:
		return fmt.Sprintf("%s reopened %q", member, title)
	default:
		return title
	}
}
