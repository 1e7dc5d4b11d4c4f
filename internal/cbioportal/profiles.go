package cbioportal

import (
	"fmt"
	"strings"
)

// SelectCNAProfile picks the discrete copy-number profile of a study,
// preferring GISTIC-style profiles over continuous ones.
func SelectCNAProfile(profiles []MolecularProfile) (string, error) {
	var cna []MolecularProfile
	for _, p := range profiles {
		if p.MolecularAlterationType == "COPY_NUMBER_ALTERATION" {
			cna = append(cna, p)
		}
	}
	if len(cna) == 0 {
		return "", fmt.Errorf("no copy-number profiles found")
	}

	for _, p := range cna {
		name := strings.ToLower(p.Name + " " + p.Description)
		if strings.Contains(name, "gistic") || strings.Contains(name, "discrete") {
			return p.MolecularProfileID, nil
		}
	}
	return cna[0].MolecularProfileID, nil
}

// SelectCNASampleList picks the sample list covering samples with
// copy-number data: all_cases_with_cna if present, then anything mentioning
// cna, then all cases.
func SelectCNASampleList(lists []SampleList) (string, error) {
	for _, sl := range lists {
		if sl.Category == "all_cases_with_cna" {
			return sl.SampleListID, nil
		}
	}
	for _, sl := range lists {
		if strings.Contains(strings.ToLower(sl.SampleListID+sl.Name), "cna") {
			return sl.SampleListID, nil
		}
	}
	for _, sl := range lists {
		if sl.Category == "all_cases_in_study" {
			return sl.SampleListID, nil
		}
	}
	return "", fmt.Errorf("no suitable sample list for copy-number data")
}
