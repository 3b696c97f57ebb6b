// Package models defines the data types shared across patina's analyzers.
package models

import "time"

// Commit is one record of the history feed, as produced by the git
// provider or by an external crawler artifact. The analysis core only
// reads it.
type Commit struct {
	SHA         string    `json:"hash"`
	Subject     string    `json:"subject"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorEmail string    `json:"author_email,omitempty"`
	AuthorDate  time.Time `json:"date"`
	Files       []string  `json:"files"`
	Insertions  int       `json:"insertions"`
	Deletions   int       `json:"deletions"`
}

// Month returns the commit's author date truncated to a calendar month
// in UTC, formatted as YYYY-MM.
func (c Commit) Month() string {
	return c.AuthorDate.UTC().Format("2006-01")
}

// ChangeSize is the total number of lines touched by the commit.
func (c Commit) ChangeSize() int {
	return c.Insertions + c.Deletions
}

// Snapshot is the content of one file as it existed at one commit.
// It is created on demand and never reused across files.
type Snapshot struct {
	SHA  string
	Path string
	Text []byte
}
