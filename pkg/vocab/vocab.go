// Package vocab holds the RDF vocabulary IRIs interpreted when reading FAIR Data
// Point metadata. Only the terms listed here are ever looked up; everything else
// in a fetched graph is ignored.
//
// References:
//   - DCAT: https://www.w3.org/TR/vocab-dcat-2/
//   - Dublin Core: https://www.dublincore.org/specifications/dublin-core/dcmi-terms/
//   - vCard: https://www.w3.org/TR/vcard-rdf/
//   - FDP-O: https://w3id.org/fdp/fdp-o
//   - LDP: https://www.w3.org/TR/ldp/
package vocab

// Namespaces
const (
	DCAT  = "http://www.w3.org/ns/dcat#"
	DCT   = "http://purl.org/dc/terms/"
	FOAF  = "http://xmlns.com/foaf/0.1/"
	VCARD = "http://www.w3.org/2006/vcard/ns#"
	FDP   = "https://w3id.org/fdp/fdp-o#"
	LDP   = "http://www.w3.org/ns/ldp#"
	RDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS  = "http://www.w3.org/2000/01/rdf-schema#"
)

// RDF / RDFS
const (
	RDFType   = RDF + "type"
	RDFSLabel = RDFS + "label"
)

// Dublin Core terms
const (
	DCTTitle       = DCT + "title"
	DCTDescription = DCT + "description"
	DCTPublisher   = DCT + "publisher"
	DCTCreator     = DCT + "creator"
	DCTIssued      = DCT + "issued"
	DCTModified    = DCT + "modified"
)

// DCAT
const (
	DCATCatalog       = DCAT + "Catalog"
	DCATDataset       = DCAT + "dataset"
	DCATTheme         = DCAT + "theme"
	DCATThemeTaxonomy = DCAT + "themeTaxonomy"
	DCATKeyword       = DCAT + "keyword"
	DCATContactPoint  = DCAT + "contactPoint"
	DCATLandingPage   = DCAT + "landingPage"
	DCATDistribution  = DCAT + "distribution"
)

// FOAF
const (
	FOAFName = FOAF + "name"
)

// vCard
const (
	VCARDFn       = VCARD + "fn"
	VCARDHasEmail = VCARD + "hasEmail"
	VCARDHasURL   = VCARD + "hasURL"
)

// FDP ontology
const (
	// FDPMetadataCatalog links an FDP to the catalogs it serves.
	FDPMetadataCatalog = FDP + "metadataCatalog"

	// FDPMetadataService links an index FDP to the FDPs it knows about.
	FDPMetadataService = FDP + "metadataService"
)

// LDP
const (
	LDPDirectContainer    = LDP + "DirectContainer"
	LDPMembershipResource = LDP + "membershipResource"
	LDPContains           = LDP + "contains"
)
