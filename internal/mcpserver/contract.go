package mcpserver

// FrontmatterContract describes the front-matter dialect that corpus
// articles follow, for LLM consumers browsing the collection.
const FrontmatterContract = `# Raido Article Front-Matter Contract

Every article in the corpus starts with a YAML front-matter block.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # recommended - used in lists and search
date: 2024-03-15                    # ISO-8601 calendar date (YYYY-MM-DD)
lastmod: 2024-06-01                 # optional - last substantive edit
draft: true                         # optional - absent means published
summary: One-line teaser text       # optional
tags:                               # optional - ordered list, as written
  - sql
  - databases
authors:
  - alice
---

Body in Markdown or MDX.
` + "```" + `

## Rules

1. The ` + "```" + `---` + "```" + ` fences must each sit on a line of their own; the opening
   fence is the first non-blank content of the file.
2. Values are restricted to: string scalars, booleans, ISO-8601 dates,
   and flat lists of strings (` + "`" + `[a, b, c]` + "`" + ` or block form). Nested
   mappings are rejected.
3. ` + "`" + `date` + "`" + `, when present, must parse as a valid calendar date.
4. ` + "`" + `draft: true` + "`" + ` keeps an article out of default listings; absence of
   the key means published.
5. Tag lists keep their written order; duplicates are preserved verbatim.
6. File paths are relative to the corpus root, use forward slashes, and
   end with ` + "`" + `.md` + "`" + ` or ` + "`" + `.mdx` + "`" + `.
7. Encoding is UTF-8.

## Assets

Images and attachments live under the shared ` + "`" + `assets/` + "`" + ` directory and
are referenced with absolute paths: ` + "`" + `![diagram](/assets/diagram.svg)` + "`" + `.
`
