package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const studentFolderPrefix = "stu_"

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// ClassFolderName builds the folder name of a class, e.g. "Class_A_ComSci_2024".
// Diacritics are stripped so folder names stay portable across filesystems.
func ClassFolderName(name, batch string) string {
	slug := removeDiacritics(name + "_" + batch)
	return strings.ReplaceAll(slug, " ", "_")
}

// StudentFolderName builds the folder name of a student inside a class folder.
func StudentFolderName(roll string) string {
	return studentFolderPrefix + strings.ReplaceAll(strings.TrimSpace(roll), " ", "_")
}

// RollFromFolderName extracts the roll number back out of a student folder
// name. Returns the name unchanged when it does not carry the prefix.
func RollFromFolderName(folder string) string {
	return strings.TrimPrefix(folder, studentFolderPrefix)
}
