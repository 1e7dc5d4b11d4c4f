package genome

// Chromosomes lists the human chromosomes processed genome-wide: autosomes
// 1-22 plus X and Y.
var Chromosomes = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12",
	"13", "14", "15", "16", "17", "18", "19", "20", "21", "22", "X", "Y",
}

// IsChromosome reports whether chrom names one of the 24 human chromosomes.
func IsChromosome(chrom string) bool {
	for _, c := range Chromosomes {
		if c == chrom {
			return true
		}
	}
	return false
}
