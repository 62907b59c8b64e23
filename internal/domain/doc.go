// Package domain defines the core business entities of the learning
// scheduler: vocabulary items on the spaced-repetition ladder, next-action
// candidates produced during orchestration, co-reading session contexts,
// and dashboard aggregates. Entities carry their own validation; all
// scheduling and transition logic lives in the srs, privacy, and service
// packages.
package domain
