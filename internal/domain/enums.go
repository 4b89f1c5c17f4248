package domain

// WorkItemType is the remote work item type a query filters on.
type WorkItemType string

const (
	WorkItemEpic    WorkItemType = "Epic"
	WorkItemFeature WorkItemType = "Feature"
)

// FetchPolicy decides what an aggregation does when one remote fetch fails.
type FetchPolicy string

const (
	// PolicyDegrade turns a failed fetch into an empty sequence.
	PolicyDegrade FetchPolicy = "degrade"
	// PolicyStrict aborts the aggregation on the first failed fetch.
	PolicyStrict FetchPolicy = "strict"
)
