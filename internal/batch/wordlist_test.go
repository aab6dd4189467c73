package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadWordList(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []WordEntry
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "words with notes",
			fileContent: `ябълка = apple
wisdom = мъдрост
dog=куче`,
			want: []WordEntry{
				{Word: "ябълка", Note: "apple"},
				{Word: "wisdom", Note: "мъдрост"},
				{Word: "dog", Note: "куче"},
			},
		},
		{
			name: "mixed format with comments",
			fileContent: `# animals
cat
  owl  

dog = куче`,
			want: []WordEntry{
				{Word: "cat"},
				{Word: "owl"},
				{Word: "dog", Note: "куче"},
			},
		},
		{
			name:        "windows line endings",
			fileContent: "cat\r\ndog = куче\r\nowl",
			want: []WordEntry{
				{Word: "cat"},
				{Word: "dog", Note: "куче"},
				{Word: "owl"},
			},
		},
		{
			name:        "multiple equals signs",
			fileContent: `test = word = with = equals`,
			want: []WordEntry{
				{Word: "test", Note: "word = with = equals"},
			},
		},
		{
			name: "note only lines are skipped",
			fileContent: `= apple
ice cream = сладолед`,
			want: []WordEntry{
				{Word: "ice cream", Note: "сладолед"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "words.txt")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadWordList(tmpFile)
			if err != nil {
				t.Fatalf("ReadWordList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadWordList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadWordList_FileNotFound(t *testing.T) {
	_, err := ReadWordList("/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestWords(t *testing.T) {
	entries := []WordEntry{{Word: "cat"}, {Word: "dog", Note: "куче"}, {Word: "cat", Note: "котка"}}

	got := Words(entries)
	want := []string{"cat", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}

	if got := Words(nil); got != nil {
		t.Errorf("Words(nil) = %v, want nil", got)
	}
}
