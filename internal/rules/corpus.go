// Package rules holds the static compliance rule corpus and the
// deterministic pattern matcher that evaluates ad copy against it.
//
// The corpus is three independent namespaces — platform rules, country rules
// (each with a legal authority), and industry rules — embedded as YAML and
// loaded once at process start. It is read-only after load and shared across
// requests without locking. Unknown lookup keys are not an error; they
// silently yield zero rules so that custom or unlisted platforms and
// industries pass through the deterministic stage untouched.
package rules

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/rizzads/rizzads/internal/domain"
)

//go:embed data/*.yaml
var corpusFS embed.FS

// =============================================================================
// Corpus
// =============================================================================

// CountryRuleSet is one country namespace entry: the rules plus the legal
// authority they derive from and optional free-text guidance forwarded to
// the AI analyzer.
type CountryRuleSet struct {
	Authority            string
	AdditionalGuidelines string
	Rules                []domain.Rule
}

// Corpus is the loaded, immutable rule corpus.
type Corpus struct {
	platforms  map[string][]domain.Rule
	countries  map[string]CountryRuleSet
	industries map[string][]domain.Rule
}

// Load parses the embedded corpus files. Any malformed rule (bad regex,
// severity, or a rule claiming both a pattern and keywords) fails the load;
// corpus problems surface at startup, never at request time.
func Load() (*Corpus, error) {
	platforms, err := corpusFS.ReadFile("data/platforms.yaml")
	if err != nil {
		return nil, fmt.Errorf("read platforms: %w", err)
	}
	countries, err := corpusFS.ReadFile("data/countries.yaml")
	if err != nil {
		return nil, fmt.Errorf("read countries: %w", err)
	}
	industries, err := corpusFS.ReadFile("data/industries.yaml")
	if err != nil {
		return nil, fmt.Errorf("read industries: %w", err)
	}
	return load(platforms, countries, industries)
}

func load(platformsYAML, countriesYAML, industriesYAML []byte) (*Corpus, error) {
	var pf struct {
		Platforms map[string][]ruleEntry `yaml:"platforms"`
	}
	if err := yaml.Unmarshal(platformsYAML, &pf); err != nil {
		return nil, fmt.Errorf("parse platforms: %w", err)
	}

	var cf struct {
		Countries map[string]countryEntry `yaml:"countries"`
	}
	if err := yaml.Unmarshal(countriesYAML, &cf); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}

	var inf struct {
		Industries map[string][]ruleEntry `yaml:"industries"`
	}
	if err := yaml.Unmarshal(industriesYAML, &inf); err != nil {
		return nil, fmt.Errorf("parse industries: %w", err)
	}

	c := &Corpus{
		platforms:  make(map[string][]domain.Rule, len(pf.Platforms)),
		countries:  make(map[string]CountryRuleSet, len(cf.Countries)),
		industries: make(map[string][]domain.Rule, len(inf.Industries)),
	}

	for platform, entries := range pf.Platforms {
		list, err := buildRules(entries)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", platform, err)
		}
		c.platforms[strings.ToLower(platform)] = list
	}

	for locale, entry := range cf.Countries {
		if entry.Authority == "" {
			return nil, fmt.Errorf("country %s: missing authority", locale)
		}
		list, err := buildRules(entry.Rules)
		if err != nil {
			return nil, fmt.Errorf("country %s: %w", locale, err)
		}
		c.countries[locale] = CountryRuleSet{
			Authority:            entry.Authority,
			AdditionalGuidelines: strings.TrimSpace(entry.AdditionalGuidelines),
			Rules:                list,
		}
	}

	for industry, entries := range inf.Industries {
		list, err := buildRules(entries)
		if err != nil {
			return nil, fmt.Errorf("industry %s: %w", industry, err)
		}
		c.industries[strings.ToLower(industry)] = list
	}

	return c, nil
}

// ruleEntry is the YAML shape of a single rule before variant resolution.
type ruleEntry struct {
	ID       string   `yaml:"id"`
	Rule     string   `yaml:"rule"`
	Severity string   `yaml:"severity"`
	Pattern  string   `yaml:"pattern"`
	Keywords []string `yaml:"keywords"`
	Fix      string   `yaml:"fix"`
}

type countryEntry struct {
	Authority            string      `yaml:"authority"`
	AdditionalGuidelines string      `yaml:"additionalGuidelines"`
	Rules                []ruleEntry `yaml:"rules"`
}

func buildRules(entries []ruleEntry) ([]domain.Rule, error) {
	list := make([]domain.Rule, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("rule with description %q: missing id", e.Rule)
		}
		severity := domain.Severity(e.Severity)
		if !severity.IsValid() {
			return nil, fmt.Errorf("rule %s: invalid severity %q", e.ID, e.Severity)
		}

		var rule domain.Rule
		var err error
		switch {
		case e.Pattern != "" && len(e.Keywords) > 0:
			return nil, fmt.Errorf("rule %s: has both pattern and keywords", e.ID)
		case e.Pattern != "":
			rule, err = domain.NewPatternRule(e.ID, e.Rule, severity, e.Pattern, e.Fix)
		case len(e.Keywords) > 0:
			rule, err = domain.NewKeywordRule(e.ID, e.Rule, severity, e.Keywords, e.Fix)
		default:
			rule = domain.NewInformationalRule(e.ID, e.Rule, severity, e.Fix)
		}
		if err != nil {
			return nil, err
		}
		list = append(list, rule)
	}
	return list, nil
}

// =============================================================================
// Lookups
// =============================================================================

// PlatformRules returns the rules for a platform, or nil for unknown keys.
func (c *Corpus) PlatformRules(platform string) []domain.Rule {
	return c.platforms[strings.ToLower(strings.TrimSpace(platform))]
}

// CountryRules returns the rule set for a locale, or the zero set for
// unknown keys. The locale is tried as given, then in canonical BCP 47 form
// (e.g. "en-us" resolves to the "en-US" entry).
func (c *Corpus) CountryRules(locale string) CountryRuleSet {
	locale = strings.TrimSpace(locale)
	if set, ok := c.countries[locale]; ok {
		return set
	}
	if tag, err := language.Parse(locale); err == nil {
		if set, ok := c.countries[tag.String()]; ok {
			return set
		}
	}
	return CountryRuleSet{}
}

// IndustryRules returns the rules for an industry, or nil for unknown keys.
func (c *Corpus) IndustryRules(industry string) []domain.Rule {
	return c.industries[strings.ToLower(strings.TrimSpace(industry))]
}

// =============================================================================
// Introspection
// =============================================================================

// RuleView is the serializable read-only view of a rule for the
// introspection endpoint. Pattern rules expose the expression source.
type RuleView struct {
	ID       string   `json:"id"`
	Rule     string   `json:"rule"`
	Severity string   `json:"severity"`
	Kind     string   `json:"kind"`
	Pattern  string   `json:"pattern,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Fix      string   `json:"fix,omitempty"`
}

// CountryView is the serializable view of a country entry.
type CountryView struct {
	Authority            string     `json:"authority"`
	AdditionalGuidelines string     `json:"additionalGuidelines,omitempty"`
	Rules                []RuleView `json:"rules"`
}

// SnapshotFilter optionally narrows a Snapshot to one key per namespace.
// An empty field means the full namespace map is returned.
type SnapshotFilter struct {
	Locale   string
	Platform string
	Industry string
}

// Snapshot is the introspection view of the corpus.
type Snapshot struct {
	Platform map[string][]RuleView  `json:"platform"`
	Country  map[string]CountryView `json:"country"`
	Industry map[string][]RuleView  `json:"industry"`
}

// Snapshot returns a read-only view of the corpus, optionally filtered.
// Filtering to an unknown key yields an empty map for that namespace,
// consistent with the graceful-degradation rule for checks.
func (c *Corpus) Snapshot(filter SnapshotFilter) Snapshot {
	snap := Snapshot{
		Platform: make(map[string][]RuleView),
		Country:  make(map[string]CountryView),
		Industry: make(map[string][]RuleView),
	}

	if filter.Platform != "" {
		key := strings.ToLower(strings.TrimSpace(filter.Platform))
		if list, ok := c.platforms[key]; ok {
			snap.Platform[key] = viewRules(list)
		}
	} else {
		for key, list := range c.platforms {
			snap.Platform[key] = viewRules(list)
		}
	}

	if filter.Locale != "" {
		set := c.CountryRules(filter.Locale)
		if set.Authority != "" {
			snap.Country[filter.Locale] = viewCountry(set)
		}
	} else {
		for key, set := range c.countries {
			snap.Country[key] = viewCountry(set)
		}
	}

	if filter.Industry != "" {
		key := strings.ToLower(strings.TrimSpace(filter.Industry))
		if list, ok := c.industries[key]; ok {
			snap.Industry[key] = viewRules(list)
		}
	} else {
		for key, list := range c.industries {
			snap.Industry[key] = viewRules(list)
		}
	}

	return snap
}

func viewRules(list []domain.Rule) []RuleView {
	views := make([]RuleView, 0, len(list))
	for _, rule := range list {
		view := RuleView{
			ID:       rule.ID,
			Rule:     rule.Description,
			Severity: rule.Severity.String(),
			Kind:     rule.Kind.String(),
			Keywords: rule.Keywords,
			Fix:      rule.Fix,
		}
		if rule.Pattern != nil {
			view.Pattern = rule.Pattern.String()
		}
		views = append(views, view)
	}
	return views
}

func viewCountry(set CountryRuleSet) CountryView {
	return CountryView{
		Authority:            set.Authority,
		AdditionalGuidelines: set.AdditionalGuidelines,
		Rules:                viewRules(set.Rules),
	}
}
