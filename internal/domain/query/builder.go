// Package query assembles the SPARQL query that lists painters of one
// artistic movement.
//
// Painters are only returned when their birthplace has a coordinate
// location: the p:P625/psv:P625 pattern is mandatory, so it is the dominant
// filter on result size. Results are sampled per painter, shuffled with
// ORDER BY RAND() and capped by LIMIT, so callers must not depend on order.
package query

import (
	"context"
	"strconv"
	"strings"
	"text/template"

	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
)

const (
	defaultLimit    = 100
	defaultLanguage = "es"
)

// iriForbidden lists characters that cannot appear inside <...> in SPARQL.
const iriForbidden = "<>\"{}|^`\\"

var painterQuery = template.Must(template.New("painters").Parse(`SELECT
?painter ?painterLabel ?painterDescription
?placeOfBirthLabel
?lat ?lon
?dateOfBirth ?dateOfDeath
(SAMPLE(?artworkLabel) AS ?sampledArtworkLabel)
(SAMPLE(?artworkImage) AS ?sampledArtworkImage)
(SAMPLE(?painterImage) AS ?sampledPainterImage)
(SAMPLE(?article) AS ?wikipediaArticle)
WHERE {
VALUES ?movement { <{{.Movement}}> }
?painter wdt:P31 wd:Q5;
         wdt:P106 wd:Q1028181;
         wdt:P19 ?placeOfBirth;
         wdt:P135 ?movement.

?placeOfBirth p:P625/psv:P625 [
    wikibase:geoLatitude ?lat;
    wikibase:geoLongitude ?lon
].

OPTIONAL { ?painter wdt:P569 ?dateOfBirth. }
OPTIONAL { ?painter wdt:P570 ?dateOfDeath. }

OPTIONAL {
  ?artwork wdt:P170 ?painter;
           wdt:P31/wdt:P279* wd:Q11060274;
           wdt:P18 ?artworkImage.
  OPTIONAL { ?artwork rdfs:label ?artworkLabel FILTER(LANG(?artworkLabel) IN ("{{.Language}}", "en")). }
}

OPTIONAL { ?painter wdt:P18 ?painterImage. }

OPTIONAL {
  ?article schema:about ?painter ;
           schema:inLanguage "{{.Language}}" ;
           schema:isPartOf <https://{{.Language}}.wikipedia.org/> .
}

SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],{{.Language}},en". }
}
GROUP BY ?painter ?painterLabel ?painterDescription ?placeOfBirthLabel ?lat ?lon ?dateOfBirth ?dateOfDeath
ORDER BY RAND()
LIMIT {{.Limit}}`))

// Builder produces painter queries.
type Builder struct {
	limit    int
	language string
	logger   logger.Logger
}

// NewBuilder creates a Builder with a limit of 100 and Spanish articles.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		limit:    defaultLimit,
		language: defaultLanguage,
		logger:   logger.Current().Named("query"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Limit returns the configured result cap.
func (b *Builder) Limit() int { return b.limit }

// Language returns the article edition.
func (b *Builder) Language() string { return b.language }

// Build returns the query for movement, or "" (with a warning) when the id
// is empty or cannot be embedded as an IRI. It never panics.
func (b *Builder) Build(ctx context.Context, movement model.MovementID) string {
	id := strings.TrimSpace(movement.String())
	if id == "" {
		b.logger.Warn(ctx, "query requested without a movement id")
		return ""
	}
	if strings.ContainsAny(id, iriForbidden) || strings.IndexFunc(id, isSpace) >= 0 {
		b.logger.Warn(ctx, "movement id is not a valid IRI", logger.String("movement", id))
		return ""
	}

	var sb strings.Builder
	err := painterQuery.Execute(&sb, struct {
		Movement string
		Language string
		Limit    string
	}{Movement: id, Language: b.language, Limit: strconv.Itoa(b.limit)})
	if err != nil {
		b.logger.Warn(ctx, "query template failed", logger.String("movement", id), logger.Error(err))
		return ""
	}
	return sb.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
