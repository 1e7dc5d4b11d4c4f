package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oncodel/codel/internal/aggregate"
	"github.com/oncodel/codel/internal/opportunity"
)

var opportunityColumns = []string{
	"deleted_gene",
	"entrez_id",
	"target_gene",
	"deletion_frequency",
	"gi_score",
	"fdr",
	"therapeutic_score",
	"essentiality_weight",
	"context_weight",
	"target_essential",
	"target_dependency_fraction",
	"validated_cell_lines",
	"validated_cancer_types",
	"source_pair",
	"study_id",
}

// WriteOpportunities writes a ranked opportunity table, ranked order
// preserved.
func WriteOpportunities(sink TableSink, res opportunity.Result) error {
	if err := sink.WriteHeader(opportunityColumns); err != nil {
		return err
	}
	for _, o := range res.Opportunities {
		row := []string{
			o.DeletedGene.Symbol,
			strconv.FormatInt(o.DeletedGene.EntrezID, 10),
			o.TargetGene,
			formatFloat(o.DeletionFrequency),
			formatFloat(o.GIScore),
			formatFloat(o.FDR),
			formatFloat(o.TherapeuticScore),
			formatFloat(o.EssentialityWeight),
			formatFloat(o.ContextWeight),
			formatBool(o.TargetEssential),
			formatFloat(o.TargetDependencyFraction),
			strconv.Itoa(o.HitCount),
			formatList(o.ValidatedCancerTypes),
			o.SourcePair,
			o.StudyID,
		}
		if err := sink.WriteRow(row); err != nil {
			return err
		}
	}
	return sink.Flush()
}

var frequencyColumns = []string{
	"gene_symbol",
	"entrez_id",
	"chromosome",
	"deletion_frequency",
}

// WriteFrequencyTable writes a genome-wide deletion-frequency table.
func WriteFrequencyTable(sink TableSink, table *aggregate.Table) error {
	if err := sink.WriteHeader(frequencyColumns); err != nil {
		return err
	}
	for _, r := range table.Records {
		row := []string{
			r.Gene.Symbol,
			strconv.FormatInt(r.Gene.EntrezID, 10),
			r.Chromosome,
			formatFloat(r.Frequency),
		}
		if err := sink.WriteRow(row); err != nil {
			return err
		}
	}
	return sink.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatList joins values with ";" so a list fits one delimited cell; "-"
// marks an empty list, matching the tab output convention elsewhere.
func formatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	for _, v := range values {
		if strings.ContainsAny(v, ";\t") {
			return fmt.Sprintf("%q", strings.Join(values, ";"))
		}
	}
	return strings.Join(values, ";")
}
