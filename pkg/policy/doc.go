// Package policy reads policy documents from disk and loads them into the
// governance service.
//
// Two formats are understood.
//
// Markdown documents (.md, .markdown) hold a single policy. The first
// heading becomes its name, the first paragraph its description and the
// whole file its content. An optional YAML front matter block sets the id:
//
//	---
//	id: pol_retention
//	---
//	# Retention Policy
//
//	All financial records are kept for seven years.
//
// YAML documents (.yml, .yaml) hold a list of tagged statements:
//
//	- !policy
//	  id: pol_retention
//	  name: Retention Policy
//	  content: |
//	    All financial records are kept for seven years.
//	- !schedule
//	  code: FIN-001
//	  name: Financial Records
//	  retention_years: 7
//	  trigger: Creation
//
// Loading is idempotent: policies are created or replaced by id and
// schedules whose code already exists are left unchanged.
package policy
