package repository

type TicketFilter struct {
	Q         string
	Status    string
	Priority  string
	Category  string
	Type      string
	Assignee  string
	Requester string
	Limit     int
	Offset    int
	Sort      string // created_at, updated_at, priority
	Order     string // asc|desc
}

type UserFilter struct {
	Q          string
	Role       string
	Department string
	Status     string
	Active     *bool
	Limit      int
	Offset     int
}
