package domain

import "testing"

func TestBuildProductText(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		pname string
		model string
		want  string
	}{
		{
			name:  "all fields",
			brand: "SMC",
			pname: "气缸",
			model: "CDQ2B20-10D",
			want:  "SMC 气缸 CDQ2B20-10D",
		},
		{
			name:  "fields trimmed",
			brand: "  SMC ",
			pname: " 气缸",
			model: "CDQ2B20-10D  ",
			want:  "SMC 气缸 CDQ2B20-10D",
		},
		{
			name:  "empty brand dropped",
			brand: "",
			pname: "气缸",
			model: "CDQ2B20-10D",
			want:  "气缸 CDQ2B20-10D",
		},
		{
			name:  "whitespace-only fields dropped",
			brand: "   ",
			pname: "气缸",
			model: "\t",
			want:  "气缸",
		},
		{
			name:  "all blank yields empty",
			brand: " ",
			pname: "",
			model: "  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildProductText(tt.brand, tt.pname, tt.model)
			if got != tt.want {
				t.Errorf("BuildProductText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildQueryText_MatchesProductTextStructure(t *testing.T) {
	// Индексный и поисковый пути должны давать идентичный текст
	// для одинаковых входов, иначе пространства эмбеддингов расходятся.
	product := BuildProductText("SMC", "气缸", "CDQ2B20-10D")
	query := BuildQueryText("气缸", "CDQ2B20-10D", "SMC")

	if product != query {
		t.Errorf("index path %q != query path %q", product, query)
	}
}

func TestBuildQueryText_PartialFields(t *testing.T) {
	got := BuildQueryText("气动执行器", "", "SMC")
	want := "SMC 气动执行器"
	if got != want {
		t.Errorf("BuildQueryText() = %q, want %q", got, want)
	}
}
