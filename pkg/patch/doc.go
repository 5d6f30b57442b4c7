/*
Package patch implements literal, exact-match patching of text documents.

	+-----------+      +-----------+      +-------------+
	|  Locate   | ---> |   Apply   | ---> |   Result    |
	| (matcher) |      | (applier) |      | (new text)  |
	+-----+-----+      +-----------+      +-------------+
	      |
	      | NotFound
	      v
	+-------------+
	| FindExcerpt |
	| (diagnose)  |
	+-------------+

🎯 Purpose:
- Find a literal search block in a document, byte for byte
- Substitute a literal replacement block
- Explain a miss with a bounded excerpt of the document

⚡ Matching rules:
- No whitespace normalization, no regular expressions, no fuzzy matches
- ModeFirst replaces the earliest occurrence (the historical behavior)
- ModeUnique refuses to patch when the block occurs more than once
- ModeAll replaces every non-overlapping occurrence

An Operation is not idempotent: once applied, its search block is normally
gone, so a second application fails with *NotFoundError. That is how an
already-applied or drifted patch gets noticed.

🔍 Example:

	op := patch.Operation{Name: "bump", Search: "x = 1", Replace: "x = 2"}
	res, err := op.Apply("x = 1\n")
	if err != nil {
		var nf *patch.NotFoundError
		if errors.As(err, &nf) {
			ex := patch.FindExcerpt(doc, op)
			fmt.Printf("near line %d:\n%s\n", ex.Line, ex.Text)
		}
		return err
	}
	fmt.Print(res.Document) // x = 2
*/
package patch
