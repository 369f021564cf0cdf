package domain

// GenerateVariantsRequest asks for localized, platform-fitted variants of a
// piece of ad copy.
type GenerateVariantsRequest struct {
	AdCopy       string   `json:"adCopy"`
	SourceLocale string   `json:"sourceLocale"`
	Locales      []string `json:"locales"`
	Platform     string   `json:"platform"`
}

// Validate reports every violated field at once.
func (r GenerateVariantsRequest) Validate(op string) error {
	var err error
	if r.AdCopy == "" {
		err = addField(err, op, "adCopy", "ad copy is required")
	}
	if len(r.AdCopy) > MaxAdCopyLength {
		err = addField(err, op, "adCopy", "ad copy exceeds maximum length")
	}
	if r.SourceLocale == "" {
		err = addField(err, op, "sourceLocale", "source locale is required")
	}
	if len(r.Locales) == 0 {
		err = addField(err, op, "locales", "at least one target locale is required")
	}
	if r.Platform == "" {
		err = addField(err, op, "platform", "platform is required")
	}
	return err
}

// AdVariant is one localized variant of the source copy.
//
// Degraded marks a variant whose translation or formatting failed; its
// Copy falls back to the untranslated source and Warning carries the
// reason. One bad locale never fails the whole generation.
type AdVariant struct {
	Locale         string `json:"locale"`
	Copy           string `json:"copy"`
	CharacterLimit int    `json:"characterLimit"`
	WithinLimit    bool   `json:"withinLimit"`
	Degraded       bool   `json:"degraded,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

// GenerateVariantsResult holds one variant per requested locale, in
// request order.
type GenerateVariantsResult struct {
	SourceCopy string      `json:"sourceCopy"`
	Platform   string      `json:"platform"`
	Variants   []AdVariant `json:"variants"`
}
