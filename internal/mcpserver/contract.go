package mcpserver

// BoardFormatContract describes the priorities document format that
// LLM consumers should follow when reasoning about or editing the board.
const BoardFormatContract = `# Raido Priorities Board Contract

The priorities document is a Markdown outline that mirrors the status of
every tracked project. Raido keeps the outline and the project notes in
sync; edit either side and the other follows.

## Structure

` + "```" + `markdown
## Active
- 🎯 [[Project Name]]
- 🛠 [[other-note|Display Alias]]

## Coming Soon
### Research
- 💡 [[Idea Project]]

## On Hold

---
Anything below the first horizontal rule is free-form and never touched.
` + "```" + `

## Rules

1. **Sections** are ` + "`" + `##` + "`" + ` headings. The canonical sections are Active,
   Coming Soon, Deferred Effort and On Hold.
2. **Priority groups** are ` + "`" + `###` + "`" + ` headings inside a section. They are
   optional; entries may sit directly under the section heading.
3. **Entries** are bullet lines of the form ` + "`" + `- emoji [[Name]]` + "`" + ` or
   ` + "`" + `- emoji [[Name|Alias]]` + "`" + `. The wikilink target is the project note's
   filename stem.
4. **Status mapping**: active → Active, coming-soon → Coming Soon,
   deferred → Deferred Effort, on-hold → On Hold. A project marked
   complete is removed from the board.
5. **The trailing region** after the first ` + "`" + `---` + "`" + ` line is preserved
   byte-for-byte on every rewrite. Put free-form notes there.
6. **Project notes** carry the source of truth in YAML frontmatter:
   ` + "`" + `status` + "`" + `, optional ` + "`" + `priority-group` + "`" + `, optional ` + "`" + `emoji` + "`" + `, and a
   ` + "`" + `tags` + "`" + ` list that must include the track tag for the project to be
   synced.

## Example project note

` + "```" + `markdown
---
title: Project Name
status: active
priority-group: Research
emoji: 💡
tags:
  - project
---

# Project Name
` + "```" + `
`
