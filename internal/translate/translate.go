// Package translate defines the interface to the external translation
// engine. The engine itself is a black-box collaborator: this package only
// fixes the contract the generation service depends on.
package translate

import "context"

// Translator translates ad copy between locales.
type Translator interface {
	// Translate renders text from the source locale into the target locale.
	// Implementations should return the input unchanged when source and
	// target are the same locale.
	Translate(ctx context.Context, text, sourceLocale, targetLocale string) (string, error)
}
