package mcpserver

// FrontmatterContract describes the frontmatter fields that drive
// classification and publishing. LLM consumers should follow it when
// preparing documents for publication.
const FrontmatterContract = `# Ehwaz Frontmatter Contract

Every publishable Markdown document carries a frontmatter header between
` + "```" + `---` + "```" + ` fences at the top of the file.

## Classification

The content type is decided in this order:

1. An explicit ` + "`" + `type: note` + "`" + ` or ` + "`" + `type: post` + "`" + ` field always wins.
2. A ` + "`" + `categories` + "`" + ` or ` + "`" + `categoryId` + "`" + ` field marks the document as a **post**.
3. A ` + "`" + `mood` + "`" + `, ` + "`" + `weather` + "`" + `, or ` + "`" + `topicId` + "`" + ` field marks it as a **note**.
4. Anything else publishes as a **note**.

## Fields

` + "```" + `markdown
---
type: post                  # OPTIONAL - explicit content type
categories: tech            # POSTS - category slug, name, or id
tags: go, sqlite            # POSTS - comma string or YAML list
slug: my-post               # POSTS - optional; derived from the filename when absent
mood: calm                  # NOTES - optional mood marker
weather: sunny              # NOTES - optional weather marker
topicId: 12                 # NOTES - optional topic binding
---

Body text in standard Markdown.

Use [[wikilinks]] to reference other vault documents.
Use [[target|alias]] for display text that differs from the target.
` + "```" + `

## Rules

1. **The filename is the title.** A leading ` + "`" + `# Title` + "`" + ` heading matching the
   filename is stripped from the pushed body.
2. **Posts need a category.** Publishing fails with a clear diagnostic when
   neither ` + "`" + `categories` + "`" + ` nor ` + "`" + `categoryId` + "`" + ` resolves.
3. **Wikilinks must resolve.** Every ` + "`" + `[[target]]` + "`" + ` in the body must point at
   an already-published vault document; any unresolved reference blocks the
   whole publish before the remote service is touched.
4. **Sync state is machine-managed.** The ` + "`" + `oid` + "`" + `, ` + "`" + `id` + "`" + `, ` + "`" + `slug` + "`" + `,
   ` + "`" + `categoryId` + "`" + `, and ` + "`" + `updated` + "`" + ` fields are written back after a publish.
   Never edit them by hand; use the unlink tool to detach a document instead.
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.
`
