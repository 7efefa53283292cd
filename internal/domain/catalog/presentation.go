package catalog

import "strings"

// PresentationOther is the fallback dosage-form category.
const PresentationOther = "Otro"

type presentationEntry struct {
	category string
	synonyms []string
}

// presentationTable maps each canonical dosage-form category to the synonyms
// that identify it in free-text product descriptions. Synonyms are stored
// pre-normalized (no diacritics, uppercase). Order matters: the first
// category with a matching synonym wins, so overlapping synonyms resolve
// deterministically.
var presentationTable = []presentationEntry{
	{"Tableta", []string{"TABLETA", "PASTILLA", "COMPRIMIDO", "GRAGEA", "PILDORA"}},
	{"Capsula", []string{"CAPSULA", "CAPSULA BLANDA", "CAPSULA DURA"}},
	{"Comprimido", []string{"COMPRIMIDO"}},
	{"Polvo", []string{"POLVO", "POLVILLO", "POLVO PARA RECONSTITUIR"}},
	{"Supositorio", []string{"SUPOSITORIO", "INSERTO RECTAL", "TORPEDO"}},
	{"Ovulo", []string{"OVULO", "INSERTO VAGINAL", "SUPOSITORIO VAGINAL"}},
	{"Implante", []string{"IMPLANTE", "DISPOSITIVO SUBDERMICO", "SISTEMA IMPLANTABLE"}},
	{"Pomada", []string{"POMADA", "UNGUENTO", "CREMA DENSA"}},
	{"Gel", []string{"GEL", "GEL TOPICO", "GELATINA MEDICINAL"}},
	{"Crema", []string{"CREMA", "EMULSION TOPICA", "POMADA LIGERA"}},
	{"Ampolleta", []string{"AMPOLLETA", "AMPOLLA", "FRASCO AMPULA"}},
	{"Jarabe", []string{"JARABE", "SOLUCION ORAL", "LIQUIDO AZUCARADO"}},
	{"Soluciones", []string{"SOLUCIONES", "SOLUCION LIQUIDA", "MEZCLA LIQUIDA"}},
	{"Emulsiones", []string{"EMULSIONES", "SUSPENSION OLEOSA", "MEZCLA ACEITE-AGUA"}},
	{"Nebulizador", []string{"NEBULIZADOR", "AEROSOL", "SOLUCION PARA NEBULIZAR"}},
	{"Paquete", []string{"PAQUETE", "KIT", "CONJUNTO", "SET"}},
	{"Bulto", []string{"BULTO", "FARDO", "PAQUETE GRANDE"}},
	{"Caja", []string{"CAJA", "ESTUCHE", "CONTENEDOR"}},
	{"Pieza", []string{"PIEZA", "UNIDAD", "ARTICULO INDIVIDUAL"}},
}

// ClassifyPresentation maps a free-text product description to its canonical
// dosage-form category. Matching is case- and accent-insensitive substring
// containment; unknown descriptions fall back to PresentationOther.
func ClassifyPresentation(description string) string {
	clean := NormalizeText(description)
	if clean == "" {
		return PresentationOther
	}

	for _, entry := range presentationTable {
		for _, syn := range entry.synonyms {
			if strings.Contains(clean, syn) {
				return entry.category
			}
		}
	}
	return PresentationOther
}

// Presentations returns the canonical category list, fallback included.
func Presentations() []string {
	out := make([]string, 0, len(presentationTable)+1)
	for _, entry := range presentationTable {
		out = append(out, entry.category)
	}
	return append(out, PresentationOther)
}
