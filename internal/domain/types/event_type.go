package types

type ActivityEvent string

func (s ActivityEvent) String() string {
	return string(s)
}

const (
	EventActivityCreated ActivityEvent = "activity.created"
)
