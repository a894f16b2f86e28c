// Package i18n holds the few localized strings the pipeline itself needs:
// fallback texts substituted into normalized offers and user-facing failure
// messages. View-layer localization is out of scope.
package i18n

import "github.com/kafuicharbeleklu/SmartProcure/internal"

type Messages struct {
	SupplierFallback          string
	UsableOffer               string
	NoMajorRisk               string
	RecommendationUnavailable string
	SpecsNotDetailed          string
	MarketAnalysisFallback    string

	NoUsableOffer    string
	MissingAPIKey    string
	InvalidAPIKey    string
	RestrictedAPIKey string
	TechnicalError   string
	UnreadableOffers string
}

var fr = Messages{
	SupplierFallback:          "Fournisseur",
	UsableOffer:               "Offre exploitable.",
	NoMajorRisk:               "Aucun risque majeur détecté.",
	RecommendationUnavailable: "Recommandation indisponible.",
	SpecsNotDetailed:          "Spécifications non détaillées.",
	MarketAnalysisFallback:    "Analyse générée avec normalisation automatique des données.",

	NoUsableOffer:    "Aucune offre exploitable n'a été détectée. Vérifiez les documents fournis.",
	MissingAPIKey:    "Clé API Gemini manquante. Configurez `GEMINI_API_KEY`, puis relancez l'application.",
	InvalidAPIKey:    "Clé API Gemini invalide. Générez une nouvelle clé dans Google AI Studio, activez Generative Language API, puis mettez-la dans `GEMINI_API_KEY`.",
	RestrictedAPIKey: "La clé API est restreinte ou le service Gemini n'est pas actif pour ce projet. Vérifiez les restrictions de clé et activez Generative Language API.",
	TechnicalError:   "Erreur technique lors de l'analyse.",
	UnreadableOffers: "Impossible de lire les fichiers d'offres.",
}

var en = Messages{
	SupplierFallback:          "Supplier",
	UsableOffer:               "Offer is usable.",
	NoMajorRisk:               "No major risk detected.",
	RecommendationUnavailable: "Recommendation unavailable.",
	SpecsNotDetailed:          "Specifications not detailed.",
	MarketAnalysisFallback:    "Analysis generated with automatic data normalization.",

	NoUsableOffer:    "No usable offer was detected. Please verify the uploaded documents.",
	MissingAPIKey:    "Missing Gemini API key. Set `GEMINI_API_KEY`, then restart the app.",
	InvalidAPIKey:    "Invalid Gemini API key. Create a new key in Google AI Studio, enable Generative Language API, then set `GEMINI_API_KEY`.",
	RestrictedAPIKey: "The API key is restricted or Gemini service is not enabled for this project. Check key restrictions and enable Generative Language API.",
	TechnicalError:   "Technical error while running analysis.",
	UnreadableOffers: "Could not read the offer documents.",
}

func For(lang internal.Language) Messages {
	if lang == internal.LangEN {
		return en
	}
	return fr
}
