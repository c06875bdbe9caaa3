package api

import "github.com/graphql-go/graphql"

func nonNullString() graphql.Output { return graphql.NewNonNull(graphql.String) }

func stringList() graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))
}

func listOf(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

var tableType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Table",
	Description: "A table of the claims warehouse schema",
	Fields: graphql.Fields{
		"name":    &graphql.Field{Type: nonNullString()},
		"alias":   &graphql.Field{Type: nonNullString()},
		"label":   &graphql.Field{Type: nonNullString()},
		"size":    &graphql.Field{Type: graphql.String, Description: "Approximate row count"},
		"columns": &graphql.Field{Type: stringList()},
	},
})

var joinType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Join",
	Fields: graphql.Fields{
		"from":  &graphql.Field{Type: nonNullString()},
		"to":    &graphql.Field{Type: nonNullString()},
		"on":    &graphql.Field{Type: nonNullString()},
		"label": &graphql.Field{Type: graphql.String},
	},
})

var statusValueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusValue",
	Fields: graphql.Fields{
		"code":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"label": &graphql.Field{Type: nonNullString()},
	},
})

var statusMapType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusMap",
	Fields: graphql.Fields{
		"column": &graphql.Field{Type: nonNullString()},
		"label":  &graphql.Field{Type: nonNullString()},
		"values": &graphql.Field{Type: listOf(statusValueType)},
	},
})

var hmoPartnerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HMOPartner",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name": &graphql.Field{Type: nonNullString()},
	},
})

var templateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Template",
	Fields: graphql.Fields{
		"key":              &graphql.Field{Type: nonNullString()},
		"name":             &graphql.Field{Type: nonNullString()},
		"description":      &graphql.Field{Type: graphql.String},
		"category":         &graphql.Field{Type: nonNullString()},
		"heavy":            &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"aggregate":        &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"accepts":          &graphql.Field{Type: stringList(), Description: "Filter fields the template reads"},
		"baseTable":        &graphql.Field{Type: graphql.String},
		"defaultDateField": &graphql.Field{Type: graphql.String},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"key":         &graphql.Field{Type: nonNullString()},
		"name":        &graphql.Field{Type: nonNullString()},
		"description": &graphql.Field{Type: graphql.String},
		"templates":   &graphql.Field{Type: listOf(templateType)},
	},
})

var filterInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:        "FilterInput",
	Description: "One template filter. Booleans are passed as \"true\" or \"false\".",
	Fields: graphql.InputObjectConfigFieldMap{
		"field": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"value": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var renderedQueryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RenderedQuery",
	Fields: graphql.Fields{
		"sql":         &graphql.Field{Type: nonNullString()},
		"countSql":    &graphql.Field{Type: graphql.String, Description: "Null when no count query can be derived"},
		"expensive":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"limitToggle": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"warning":     &graphql.Field{Type: graphql.String},
		"limit":       &graphql.Field{Type: graphql.Int},
	},
})

var joinStateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BuilderJoin",
	Fields: graphql.Fields{
		"table": &graphql.Field{Type: nonNullString()},
		"alias": &graphql.Field{Type: nonNullString()},
		"type":  &graphql.Field{Type: nonNullString()},
		"on":    &graphql.Field{Type: nonNullString()},
	},
})

var whereStateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BuilderWhere",
	Fields: graphql.Fields{
		"column":   &graphql.Field{Type: graphql.String},
		"operator": &graphql.Field{Type: graphql.String},
		"value":    &graphql.Field{Type: graphql.String},
	},
})

var builderStateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BuilderState",
	Fields: graphql.Fields{
		"baseTable":      &graphql.Field{Type: nonNullString()},
		"baseAlias":      &graphql.Field{Type: nonNullString()},
		"columns":        &graphql.Field{Type: stringList()},
		"joins":          &graphql.Field{Type: listOf(joinStateType)},
		"wheres":         &graphql.Field{Type: listOf(whereStateType)},
		"dateColumn":     &graphql.Field{Type: graphql.String},
		"dateFrom":       &graphql.Field{Type: graphql.String},
		"dateTo":         &graphql.Field{Type: graphql.String},
		"orderColumn":    &graphql.Field{Type: graphql.String},
		"orderDirection": &graphql.Field{Type: graphql.String},
		"limit":          &graphql.Field{Type: graphql.String},
	},
})

var joinInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BuilderJoinInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"table": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var whereInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BuilderWhereInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"column":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"operator": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"value":    &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var builderInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:        "BuilderInput",
	Description: "A saved builder state. Join predicates always come from the catalog.",
	Fields: graphql.InputObjectConfigFieldMap{
		"baseTable":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"columns":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"joins":          &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(joinInputType))},
		"wheres":         &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(whereInputType))},
		"dateColumn":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"dateFrom":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"dateTo":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"orderColumn":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"orderDirection": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"limit":          &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var builderOpInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BuilderOp",
	Description: "One builder edit. op is one of setBaseTable, toggleColumn, selectAll, " +
		"resetColumns, addJoin, removeJoin, addWhere, updateWhere, removeWhere, " +
		"setDateRange, setOrder, setLimit.",
	Fields: graphql.InputObjectConfigFieldMap{
		"op":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"table":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"column":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"index":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"field":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"value":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"from":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"to":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"direction": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"limit":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var builtQueryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BuiltQuery",
	Fields: graphql.Fields{
		"state":          &graphql.Field{Type: graphql.NewNonNull(builderStateType)},
		"sql":            &graphql.Field{Type: nonNullString()},
		"countSql":       &graphql.Field{Type: graphql.String},
		"availableJoins": &graphql.Field{Type: listOf(joinType)},
		"errors":         &graphql.Field{Type: stringList(), Description: "Edits that were rejected and skipped"},
	},
})

var derivedCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DerivedCount",
	Fields: graphql.Fields{
		"sql":       &graphql.Field{Type: graphql.String},
		"available": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var savedQueryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SavedQuery",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":     &graphql.Field{Type: nonNullString()},
		"sql":      &graphql.Field{Type: nonNullString()},
		"date":     &graphql.Field{Type: nonNullString()},
		"category": &graphql.Field{Type: graphql.String},
		"template": &graphql.Field{Type: graphql.String},
	},
})

var savedQueryInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SavedQueryInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"sql":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"category": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"template": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var dailyTotalType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DailyTotal",
	Fields: graphql.Fields{
		"date":  &graphql.Field{Type: nonNullString()},
		"total": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var summaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Summary",
	Fields: graphql.Fields{
		"total":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"average": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"days":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"peak":    &graphql.Field{Type: dailyTotalType},
	},
})

var insurerTotalType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InsurerTotal",
	Fields: graphql.Fields{
		"insurer": &graphql.Field{Type: nonNullString()},
		"total":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"days":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Description: "Days with at least one claim"},
	},
})

var insurerCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InsurerCount",
	Fields: graphql.Fields{
		"insurer": &graphql.Field{Type: nonNullString()},
		"count":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var trendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TrendPoint",
	Fields: graphql.Fields{
		"date":   &graphql.Field{Type: nonNullString()},
		"counts": &graphql.Field{Type: listOf(insurerCountType)},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"start":         &graphql.Field{Type: graphql.String},
		"end":           &graphql.Field{Type: graphql.String},
		"insurers":      &graphql.Field{Type: stringList(), Description: "Selected insurers"},
		"allInsurers":   &graphql.Field{Type: stringList()},
		"summary":       &graphql.Field{Type: graphql.NewNonNull(summaryType)},
		"daily":         &graphql.Field{Type: listOf(dailyTotalType)},
		"insurerTotals": &graphql.Field{Type: listOf(insurerTotalType)},
		"trend":         &graphql.Field{Type: listOf(trendPointType)},
		"slackMessage":  &graphql.Field{Type: nonNullString(), Description: "Summary message for the current filter"},
	},
})

var dashboardFilterInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "DashboardFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"start":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"end":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"insurers":  &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		"sortBy":    &graphql.InputObjectFieldConfig{Type: graphql.String, DefaultValue: "claims"},
		"ascending": &graphql.InputObjectFieldConfig{Type: graphql.Boolean, DefaultValue: false},
	},
})

var periodInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PeriodInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"label": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"from":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"to":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var periodStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PeriodStats",
	Fields: graphql.Fields{
		"label":     &graphql.Field{Type: nonNullString()},
		"from":      &graphql.Field{Type: nonNullString()},
		"to":        &graphql.Field{Type: nonNullString()},
		"total":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"average":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"days":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"byInsurer": &graphql.Field{Type: listOf(insurerCountType)},
		"delta":     &graphql.Field{Type: graphql.Float, Description: "Percent change in total from the previous period"},
		"avgDelta":  &graphql.Field{Type: graphql.Float},
	},
})

var overlayRowType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OverlayRow",
	Fields: graphql.Fields{
		"day":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"label":  &graphql.Field{Type: nonNullString()},
		"values": &graphql.Field{Type: listOf(graphql.Int)},
	},
})

var insurerRowType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InsurerComparisonRow",
	Fields: graphql.Fields{
		"insurer": &graphql.Field{Type: nonNullString()},
		"values":  &graphql.Field{Type: listOf(graphql.Int)},
		"deltas":  &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.Float))},
	},
})

var comparisonType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comparison",
	Fields: graphql.Fields{
		"mode":     &graphql.Field{Type: nonNullString()},
		"periods":  &graphql.Field{Type: listOf(periodStatsType)},
		"overlay":  &graphql.Field{Type: listOf(overlayRowType)},
		"insurers": &graphql.Field{Type: listOf(insurerRowType)},
	},
})

var reportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Report",
	Fields: graphql.Fields{
		"periods": &graphql.Field{Type: listOf(periodStatsType)},
		"message": &graphql.Field{Type: nonNullString()},
	},
})

var missingColumnsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MissingColumns",
	Fields: graphql.Fields{
		"table":   &graphql.Field{Type: nonNullString()},
		"columns": &graphql.Field{Type: stringList()},
	},
})

var schemaDriftType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SchemaDrift",
	Fields: graphql.Fields{
		"checked":        &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"missingTables":  &graphql.Field{Type: stringList()},
		"missingColumns": &graphql.Field{Type: listOf(missingColumnsType)},
		"error":          &graphql.Field{Type: graphql.String},
		"checkedAt":      &graphql.Field{Type: graphql.String},
	},
})

var generatedSQLType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GeneratedSQL",
	Fields: graphql.Fields{
		"sql":      &graphql.Field{Type: nonNullString()},
		"provider": &graphql.Field{Type: nonNullString()},
	},
})

var deliveryResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DeliveryResult",
	Fields: graphql.Fields{
		"channel": &graphql.Field{Type: nonNullString()},
		"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"error":   &graphql.Field{Type: graphql.String},
	},
})

var notifyResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NotifyResult",
	Fields: graphql.Fields{
		"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"results": &graphql.Field{Type: listOf(deliveryResultType)},
	},
})
