// Package model loads individual ontology models: one folder holding an
// ontology graph and a metadata sidecar whose enumerated fields must map
// onto the catalog's closed vocabularies.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidValue marks a metadata value outside the recognized vocabulary,
// or a multi-valued declaration where only one value is allowed.
var ErrInvalidValue = errors.New("invalid metadata value")

// DevelopmentContext classifies the setting a model was developed in.
type DevelopmentContext string

const (
	ContextClassroom DevelopmentContext = "Classroom"
	ContextIndustry  DevelopmentContext = "Industry"
	ContextResearch  DevelopmentContext = "Research"
)

// Purpose classifies what a model was designed for.
type Purpose string

const (
	PurposeConceptualClarification Purpose = "ConceptualClarification"
	PurposeDataPublication         Purpose = "DataPublication"
	PurposeDecisionSupportSystem   Purpose = "DecisionSupportSystem"
	PurposeExample                 Purpose = "Example"
	PurposeInformationRetrieval    Purpose = "InformationRetrieval"
	PurposeInteroperability        Purpose = "Interoperability"
	PurposeLanguageEngineering     Purpose = "LanguageEngineering"
	PurposeLearning                Purpose = "Learning"
	PurposeOntologicalAnalysis     Purpose = "OntologicalAnalysis"
	PurposeSoftwareEngineering     Purpose = "SoftwareEngineering"
)

// RepresentationStyle classifies the modeling style of a model.
type RepresentationStyle string

const (
	StyleOntouml RepresentationStyle = "OntoumlStyle"
	StyleUfo     RepresentationStyle = "UfoStyle"
)

// OntologyType classifies the generality level of a model.
type OntologyType string

const (
	TypeCore        OntologyType = "Core"
	TypeDomain      OntologyType = "Domain"
	TypeApplication OntologyType = "Application"
)

var (
	developmentContexts  = []DevelopmentContext{ContextClassroom, ContextIndustry, ContextResearch}
	purposes             = []Purpose{PurposeConceptualClarification, PurposeDataPublication, PurposeDecisionSupportSystem, PurposeExample, PurposeInformationRetrieval, PurposeInteroperability, PurposeLanguageEngineering, PurposeLearning, PurposeOntologicalAnalysis, PurposeSoftwareEngineering}
	representationStyles = []RepresentationStyle{StyleOntouml, StyleUfo}
	ontologyTypes        = []OntologyType{TypeCore, TypeDomain, TypeApplication}
)

// normalize folds case, spaces, underscores and hyphens so that values like
// "Decision Support System" and "decision_support_system" both match.
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func ParseDevelopmentContext(s string) (DevelopmentContext, error) {
	for _, c := range developmentContexts {
		if normalize(string(c)) == normalize(s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a development context", ErrInvalidValue, s)
}

func ParsePurpose(s string) (Purpose, error) {
	for _, p := range purposes {
		if normalize(string(p)) == normalize(s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an ontology purpose", ErrInvalidValue, s)
}

func ParseRepresentationStyle(s string) (RepresentationStyle, error) {
	// Short aliases are common in older metadata files.
	switch normalize(s) {
	case "ontouml":
		return StyleOntouml, nil
	case "ufo":
		return StyleUfo, nil
	}
	for _, st := range representationStyles {
		if normalize(string(st)) == normalize(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a representation style", ErrInvalidValue, s)
}

func ParseOntologyType(s string) (OntologyType, error) {
	for _, t := range ontologyTypes {
		if normalize(string(t)) == normalize(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an ontology type", ErrInvalidValue, s)
}
