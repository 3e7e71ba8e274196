package transform

import "fmt"

func ExampleReverseComplement() {
	sequence := "GATTACA"
	reverseComplement := ReverseComplement(sequence)
	fmt.Println(reverseComplement)

	// Output: TGTAATC
}
