package check

import (
	"fmt"
	"io"

	"libcprobe/pkg/libc"
)

func stringSuite() Suite {
	return Suite{
		Name: "strings",
		Info: "NUL-terminated string handling: strcpy, strcmp, strstr, strchr",
		Checks: []Check{
			{
				Name:   "strcmp",
				Info:   "copy two literals with strcpy and order them with strcmp",
				Expect: "str2 is less than str1",
				Run:    runStrcmp,
			},
			{
				Name:   "strstr",
				Info:   "locate a substring with strstr",
				Expect: "The substring is: Point\n",
				Run:    runStrstr,
			},
			{
				Name:   "strchr",
				Info:   "locate a character with strchr",
				Expect: "String after |.| is - |.tutorialspoint.com|\n",
				Run:    runStrchr,
			},
		},
	}
}

// runStrcmp fills two 15-byte buffers with strcpy and prints which one
// orders first. "abcdef" compares greater than "ABCDEF" because
// lowercase letters sit above uppercase in the byte table.
func runStrcmp(w io.Writer) error {
	str1 := libc.NewStr(15)
	str2 := libc.NewStr(15)

	if err := libc.Strcpy(str1, "abcdef"); err != nil {
		return fmt.Errorf("strcpy(str1): %s", err)
	}
	if err := libc.Strcpy(str2, "ABCDEF"); err != nil {
		return fmt.Errorf("strcpy(str2): %s", err)
	}

	ret := libc.Strcmp(str1, str2)
	switch {
	case ret < 0:
		fmt.Fprintf(w, "str1 is less than str2")
	case ret > 0:
		fmt.Fprintf(w, "str2 is less than str1")
	default:
		fmt.Fprintf(w, "str1 is equal to str2")
	}

	return nil
}

// runStrstr searches a fixed haystack for "Point" and prints the suffix
// of the haystack starting at the match.
func runStrstr(w io.Writer) error {
	haystack := libc.StrLit(20, "TutorialsPoint")
	needle := libc.StrLit(10, "Point")

	ret, _ := libc.Strstr(haystack, needle)
	fmt.Fprintf(w, "The substring is: %s\n", ret)

	return nil
}

// runStrchr searches a URL for the first dot and prints the suffix
// starting there.
func runStrchr(w io.Writer) error {
	str := libc.StrLit(30, "http://www.tutorialspoint.com")
	ch := byte('.')

	ret, _ := libc.Strchr(str, ch)
	fmt.Fprintf(w, "String after |%c| is - |%s|\n", ch, ret)

	return nil
}
