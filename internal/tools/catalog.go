package tools

// Tables returns every domain table in catalog order.
func Tables() []Table {
	return []Table{
		ProjectTable(),
		RepositoryTable(),
		WorkItemTable(),
		BuildTable(),
		ReleaseTable(),
		PipelineTable(),
		TestResultTable(),
	}
}

// Catalog builds the full operation registry. The static tables share no
// names, so construction cannot fail.
func Catalog() *Registry {
	return MustBuildRegistry(Tables()...)
}
