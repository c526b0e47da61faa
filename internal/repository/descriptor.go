package repository

// QueryDescriptor is one read request: filters, pagination, sort and shape.
// Zero values mean "not supplied".
type QueryDescriptor struct {
	Filters   map[string]any
	Page      int
	PageSize  int
	SortField string
	SortOrder string
	Shape     Shape
}

// Paginated reports whether both page and pageSize were supplied
func (d QueryDescriptor) Paginated() bool {
	return d.Page > 0 && d.PageSize > 0
}

// QueryResult is what GetQuery returns: the shaped rows plus everything
// MakeMetadata needs.
type QueryResult struct {
	Rows     []Row
	Total    int64
	Page     int
	PageSize int
	Shape    Shape
	Sort     SortExpression
}
