package usecase

import (
	"strings"

	"github.com/dealscout/backend/internal/domain"
)

// diacriticFolding maps the Croatian letters that show up in local listings
// onto their ASCII base form so tokens compare equal across spellings.
var diacriticFolding = strings.NewReplacer(
	"č", "c", "ć", "c", "ž", "z", "š", "s", "đ", "d",
	"Č", "c", "Ć", "c", "Ž", "z", "Š", "s", "Đ", "d",
)

// translationTable is a small hr->en pivot dictionary for the commerce and
// spec vocabulary the matcher compares on. It is intentionally static: the
// scoring loops are hot and must not call out to a translation service.
var translationTable = map[string]string{
	"memorija":    "storage",
	"memorije":    "storage",
	"pohrana":     "storage",
	"baterija":    "battery",
	"baterijom":   "battery",
	"ekran":       "screen",
	"zaslon":      "screen",
	"kamera":      "camera",
	"cijena":      "price",
	"boja":        "color",
	"crna":        "black",
	"bijela":      "white",
	"novo":        "new",
	"rabljeno":    "used",
	"dostava":     "shipping",
	"jamstvo":     "warranty",
	"garancija":   "warranty",
	"mobitel":     "smartphone",
	"prijenosnik": "laptop",
	"racunalo":    "computer",
	"slusalice":   "headphones",
	"televizor":   "tv",
	"odlican":     "excellent",
	"odlicna":     "excellent",
	"dobar":       "good",
	"dobra":       "good",
	"los":         "bad",
	"losa":        "bad",
	"brz":         "fast",
	"brza":        "fast",
	"velik":       "large",
	"velika":      "large",
	"mali":        "small",
	"mala":        "small",
}

// StaticNormalizer lowercases, folds diacritics, and translates known terms
// to an English pivot via a static dictionary. Text already in the target
// language passes through the dictionary unchanged (its words simply have no
// entries), so normalization is safe to apply unconditionally.
type StaticNormalizer struct{}

// NewStaticNormalizer creates the dictionary-backed normalizer
func NewStaticNormalizer() *StaticNormalizer {
	return &StaticNormalizer{}
}

// Normalize brings text to comparable form in the target language.
// The pivot is English; any non-"hr" target currently behaves the same since
// the dictionary only covers the hr->en direction.
func (n *StaticNormalizer) Normalize(text, targetLang string) string {
	if text == "" {
		return ""
	}

	folded := diacriticFolding.Replace(strings.ToLower(text))

	words := strings.Fields(folded)
	for i, word := range words {
		trimmed := strings.Trim(word, ",.!?;:()\"'")
		if pivot, ok := translationTable[trimmed]; ok {
			words[i] = strings.Replace(word, trimmed, pivot, 1)
		}
	}
	return strings.Join(words, " ")
}

var _ domain.Normalizer = (*StaticNormalizer)(nil)
