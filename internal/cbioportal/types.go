package cbioportal

// Study is a cancer study as returned by the studies endpoint.
type Study struct {
	StudyID      string `json:"studyId"`
	Name         string `json:"name"`
	CancerTypeID string `json:"cancerTypeId"`
	SampleCount  int    `json:"allSampleCount"`
}

// MolecularProfile describes one molecular data profile of a study.
type MolecularProfile struct {
	MolecularProfileID      string `json:"molecularProfileId"`
	Name                    string `json:"name"`
	Description             string `json:"description"`
	MolecularAlterationType string `json:"molecularAlterationType"`
	Datatype                string `json:"datatype"`
}

// SampleList is a named set of samples within a study.
type SampleList struct {
	SampleListID string `json:"sampleListId"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	SampleCount  int    `json:"sampleCount"`
}

// CopyNumberCall is one discrete copy-number alteration call for a
// (sample, gene) pair. Alteration uses GISTIC coding: -2 deep deletion,
// -1 shallow deletion, 0 diploid, 1 gain, 2 amplification.
type CopyNumberCall struct {
	SampleID     string `json:"sampleId"`
	EntrezGeneID int64  `json:"entrezGeneId"`
	Alteration   int    `json:"alteration"`
}

// referenceGene is the reference-genome-genes endpoint's record shape.
type referenceGene struct {
	EntrezGeneID   int64  `json:"entrezGeneId"`
	HugoGeneSymbol string `json:"hugoGeneSymbol"`
	Chromosome     string `json:"chromosome"`
	Cytoband       string `json:"cytoband"`
	Start          int64  `json:"start"`
	End            int64  `json:"end"`
}
