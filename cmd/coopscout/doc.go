// Command coopscout discovers cooperative organizations from exported feed
// files, merges duplicates into a shared registry, and ranks the unresolved
// candidates by similarity to the already-verified set for interactive
// review.
package main
