// Package feed loads a pre-crawled commit feed from a JSON artifact,
// validating it against the feed schema before the pipeline sees it.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"patina/pkg/config"
	"patina/pkg/models"

	_ "embed"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "patina://feed.schema.json"

// rawCommit mirrors the crawler artifact; dates arrive as strings in
// RFC 3339 (git's %aI) form.
type rawCommit struct {
	Hash        string   `json:"hash"`
	Subject     string   `json:"subject"`
	Date        string   `json:"date"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
	Files       []string `json:"files"`
	Insertions  int      `json:"insertions"`
	Deletions   int      `json:"deletions"`
}

// Load reads and validates a commit feed file. Schema violations and
// unparseable dates are configuration-class failures: the run must not
// start on a malformed feed.
func Load(path string) ([]models.Commit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading feed: %v", config.ErrConfig, err)
	}
	return Parse(data)
}

// Parse validates and decodes feed bytes.
func Parse(data []byte) ([]models.Commit, error) {
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("%w: feed does not match schema: %v", config.ErrConfig, err)
	}

	var raw []rawCommit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding feed: %v", config.ErrConfig, err)
	}

	commits := make([]models.Commit, 0, len(raw))
	for i, rc := range raw {
		date, err := parseDate(rc.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: feed entry %d (%s): %v", config.ErrConfig, i, rc.Hash, err)
		}
		commits = append(commits, models.Commit{
			SHA:         rc.Hash,
			Subject:     rc.Subject,
			AuthorName:  rc.AuthorName,
			AuthorEmail: rc.AuthorEmail,
			AuthorDate:  date,
			Files:       rc.Files,
			Insertions:  rc.Insertions,
			Deletions:   rc.Deletions,
		})
	}
	return commits, nil
}

// parseDate accepts the date formats crawlers actually emit: RFC 3339
// (git %aI) and git's default log format.
func parseDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05 -0700",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func validate(data []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return err
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return schema.Validate(instance)
}
