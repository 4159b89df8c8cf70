// Package sources defines the source feeds the registry is assembled from.
//
// A feed is an exported file (CSV or JSON) delivered by one upstream list of
// organizations. Feeds differ wildly in column naming, so each feed carries a
// field mapping that names which columns hold the record name, website,
// location, category hint, and corporation-type code. Feeds are ordered by
// Kind: more authoritative kinds win merge conflicts during deduplication.
package sources
