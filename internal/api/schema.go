package api

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"claims-dashboard/internal/builder"
	"claims-dashboard/internal/catalog"
	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/dashboard"
	"claims-dashboard/internal/notify"
	"claims-dashboard/internal/observability"
	"claims-dashboard/internal/safety"
	"claims-dashboard/internal/savedquery"
	"claims-dashboard/internal/sqltext"
	"claims-dashboard/internal/templates"

	"github.com/graphql-go/graphql"
)

const (
	modeMonth  = "month"
	modeCustom = "custom"
)

// NewSchema builds the GraphQL schema over s.
func NewSchema(s *Service) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tables": &graphql.Field{
				Type:    listOf(tableType),
				Resolve: s.resolveTables,
			},
			"joins": &graphql.Field{
				Type:        listOf(joinType),
				Description: "Authored joins from one table",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, _ := p.Args["from"].(string)
					return joinMaps(s.Catalog.JoinsFrom(from)), nil
				},
			},
			"statusMaps": &graphql.Field{
				Type:    listOf(statusMapType),
				Resolve: resolveStatusMaps,
			},
			"hmoPartners": &graphql.Field{
				Type:    listOf(hmoPartnerType),
				Resolve: resolveHMOPartners,
			},
			"categories": &graphql.Field{
				Type:    listOf(categoryType),
				Resolve: s.resolveCategories,
			},
			"template": &graphql.Field{
				Type: templateType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					t, err := s.Templates.Lookup(key)
					if errors.Is(err, templates.ErrUnknownTemplate) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return templateMap(t), nil
				},
			},
			"renderTemplate": &graphql.Field{
				Type:        graphql.NewNonNull(renderedQueryType),
				Description: "Render a report template with filters",
				Args: graphql.FieldConfigArgument{
					"key":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"filters": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(filterInputType))},
					"limitOn": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
				},
				Resolve: s.resolveRenderTemplate,
			},
			"buildQuery": &graphql.Field{
				Type:        graphql.NewNonNull(builtQueryType),
				Description: "Apply edits to a builder state and render it",
				Args: graphql.FieldConfigArgument{
					"state": &graphql.ArgumentConfig{Type: builderInputType},
					"ops":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(builderOpInputType))},
				},
				Resolve: s.resolveBuildQuery,
			},
			"deriveCount": &graphql.Field{
				Type: graphql.NewNonNull(derivedCountType),
				Args: graphql.FieldConfigArgument{
					"sql": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sql, _ := p.Args["sql"].(string)
					count, ok := sqltext.DeriveCount(sql)
					return map[string]interface{}{"sql": optional(count, ok), "available": ok}, nil
				},
			},
			"savedQueries": &graphql.Field{
				Type: listOf(savedQueryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := s.Saved.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]interface{}, len(list))
					for i, q := range list {
						out[i] = savedQueryMap(q)
					}
					return out, nil
				},
			},
			"dashboard": &graphql.Field{
				Type: graphql.NewNonNull(dashboardType),
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: dashboardFilterInputType},
				},
				Resolve: s.resolveDashboard,
			},
			"comparison": &graphql.Field{
				Type:        graphql.NewNonNull(comparisonType),
				Description: "Compare months (mode month) or custom date ranges (mode custom)",
				Args: graphql.FieldConfigArgument{
					"mode":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: modeMonth},
					"months":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
					"periods":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(periodInputType))},
					"insurers": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
				},
				Resolve: s.resolveComparison,
			},
			"report": &graphql.Field{
				Type:        graphql.NewNonNull(reportType),
				Description: "Periods and Slack report text for a preset or explicit periods",
				Args: graphql.FieldConfigArgument{
					"preset":   &graphql.ArgumentConfig{Type: graphql.String},
					"periods":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(periodInputType))},
					"insurers": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
				},
				Resolve: s.resolveReport,
			},
			"slackChannels": &graphql.Field{
				Type: stringList(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.Notifier.Channels(), nil
				},
			},
			"schemaDrift": &graphql.Field{
				Type:    graphql.NewNonNull(schemaDriftType),
				Resolve: s.resolveSchemaDrift,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"saveQuery": &graphql.Field{
				Type: graphql.NewNonNull(savedQueryType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(savedQueryInputType)},
				},
				Resolve: s.resolveSaveQuery,
			},
			"deleteQuery": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Delete the saved query at index; 0 is the most recent",
				Args: graphql.FieldConfigArgument{
					"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					index, _ := p.Args["index"].(int)
					if err := s.Saved.Delete(p.Context, index); err != nil {
						return false, err
					}
					return true, nil
				},
			},
			"generateSQL": &graphql.Field{
				Type: graphql.NewNonNull(generatedSQLType),
				Args: graphql.FieldConfigArgument{
					"prompt": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveGenerateSQL,
			},
			"notify": &graphql.Field{
				Type: graphql.NewNonNull(notifyResultType),
				Args: graphql.FieldConfigArgument{
					"channels": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
					"message":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveNotify,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func (s *Service) resolveTables(graphql.ResolveParams) (interface{}, error) {
	tables := s.Catalog.Tables()
	out := make([]interface{}, len(tables))
	for i, t := range tables {
		out[i] = map[string]interface{}{
			"name":    t.Name,
			"alias":   t.Alias,
			"label":   t.Label,
			"size":    t.Size,
			"columns": t.Columns,
		}
	}
	return out, nil
}

func joinMaps(edges []catalog.JoinEdge) []interface{} {
	out := make([]interface{}, len(edges))
	for i, e := range edges {
		out[i] = map[string]interface{}{"from": e.From, "to": e.To, "on": e.On, "label": e.Label}
	}
	return out
}

func resolveStatusMaps(graphql.ResolveParams) (interface{}, error) {
	maps := catalog.StatusMaps()
	out := make([]interface{}, len(maps))
	for i, m := range maps {
		values := make([]interface{}, len(m.Values))
		for j, v := range m.Values {
			values[j] = map[string]interface{}{"code": v.Code, "label": v.Label}
		}
		out[i] = map[string]interface{}{"column": m.Column, "label": m.Label, "values": values}
	}
	return out, nil
}

func resolveHMOPartners(graphql.ResolveParams) (interface{}, error) {
	partners := catalog.HMOPartners()
	out := make([]interface{}, len(partners))
	for i, h := range partners {
		out[i] = map[string]interface{}{"id": h.ID, "name": h.Name}
	}
	return out, nil
}

func (s *Service) resolveCategories(graphql.ResolveParams) (interface{}, error) {
	cats := s.Templates.Categories()
	out := make([]interface{}, len(cats))
	for i, c := range cats {
		ts := s.Templates.InCategory(c.Key)
		list := make([]interface{}, len(ts))
		for j, t := range ts {
			list[j] = templateMap(t)
		}
		out[i] = map[string]interface{}{
			"key":         c.Key,
			"name":        c.Name,
			"description": c.Description,
			"templates":   list,
		}
	}
	return out, nil
}

func templateMap(t templates.Template) map[string]interface{} {
	accepts := make([]string, len(t.Accepts))
	for i, f := range t.Accepts {
		accepts[i] = string(f)
	}
	return map[string]interface{}{
		"key":              t.Key,
		"name":             t.Name,
		"description":      t.Description,
		"category":         t.Category,
		"heavy":            t.Heavy,
		"aggregate":        t.Aggregate,
		"accepts":          accepts,
		"baseTable":        t.BaseTable,
		"defaultDateField": t.DefaultDateField,
	}
}

func (s *Service) resolveRenderTemplate(p graphql.ResolveParams) (result interface{}, err error) {
	key, _ := p.Args["key"].(string)
	limitOn, _ := p.Args["limitOn"].(bool)
	expensive := false
	defer func() {
		observability.MetricsFromContext(p.Context).RecordTemplateRender(p.Context, key, expensive, err)
	}()

	t, err := s.Templates.Lookup(key)
	if err != nil {
		return nil, err
	}
	f, err := filtersArg(p.Args["filters"])
	if err != nil {
		return nil, err
	}

	a := safety.Assess(t, f, limitOn)
	expensive = a.Expensive
	sql := t.Build(f, a.Limit)
	count, ok := sqltext.DeriveCount(sql)

	var limit interface{}
	if a.Limit != nil {
		limit = *a.Limit
	}
	return map[string]interface{}{
		"sql":         sql,
		"countSql":    optional(count, ok),
		"expensive":   a.Expensive,
		"limitToggle": a.LimitToggle,
		"warning":     optional(a.Warning, a.Warning != ""),
		"limit":       limit,
	}, nil
}

// filtersArg converts [{field, value}] into template filters. The string
// values "true" and "false" become booleans so toggles keep their presence
// semantics.
func filtersArg(arg interface{}) (templates.Filters, error) {
	items, _ := arg.([]interface{})
	raw := make(map[string]interface{}, len(items))
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		field, _ := m["field"].(string)
		value := m["value"]
		switch value {
		case "true":
			value = true
		case "false":
			value = false
		}
		raw[field] = value
	}
	return templates.ParseFilters(raw)
}

func (s *Service) resolveBuildQuery(p graphql.ResolveParams) (result interface{}, err error) {
	var b *builder.Builder
	defer func() {
		if b == nil {
			observability.MetricsFromContext(p.Context).RecordBuilderRender(p.Context, "", 0, err)
			return
		}
		st := b.Snapshot()
		observability.MetricsFromContext(p.Context).RecordBuilderRender(p.Context, st.BaseTable, len(st.Joins), err)
	}()

	if in, ok := p.Args["state"].(map[string]interface{}); ok {
		b, err = builder.Restore(s.Catalog, stateArg(in))
		if err != nil {
			return nil, err
		}
	} else {
		b = builder.New(s.Catalog)
	}

	errs := []string{}
	ops, _ := p.Args["ops"].([]interface{})
	for i, item := range ops {
		op, _ := item.(map[string]interface{})
		if err := applyOp(b, op); err != nil {
			errs = append(errs, fmt.Sprintf("op %d (%s): %v", i, str(op, "op"), err))
		}
	}

	sql := b.SQL()
	count, ok := sqltext.DeriveCount(sql)
	return map[string]interface{}{
		"state":          stateMap(b.Snapshot()),
		"sql":            sql,
		"countSql":       optional(count, ok),
		"availableJoins": joinMaps(b.AvailableJoins()),
		"errors":         errs,
	}, nil
}

// applyOp runs one builder edit. Unknown ops are reported as errors.
func applyOp(b *builder.Builder, op map[string]interface{}) error {
	switch name := str(op, "op"); name {
	case "setBaseTable":
		return b.SetBaseTable(str(op, "table"))
	case "toggleColumn":
		return b.ToggleColumn(str(op, "column"))
	case "selectAll":
		b.SelectAll()
	case "resetColumns":
		b.ResetColumns()
	case "addJoin":
		return b.AddJoin(str(op, "table"))
	case "removeJoin":
		b.RemoveJoin(str(op, "table"))
	case "addWhere":
		b.AddWhere()
	case "updateWhere":
		index, err := indexOf(op)
		if err != nil {
			return err
		}
		return b.UpdateWhere(index, builder.WhereField(str(op, "field")), str(op, "value"))
	case "removeWhere":
		index, err := indexOf(op)
		if err != nil {
			return err
		}
		return b.RemoveWhere(index)
	case "setDateRange":
		return b.SetDateRange(str(op, "column"), str(op, "from"), str(op, "to"))
	case "setOrder":
		return b.SetOrder(str(op, "column"), str(op, "direction"))
	case "setLimit":
		b.SetLimit(str(op, "limit"))
	default:
		return fmt.Errorf("unknown builder op %q", name)
	}
	return nil
}

// indexOf returns the where row an op targets. Row edits must name one.
func indexOf(op map[string]interface{}) (int, error) {
	index, ok := op["index"].(int)
	if !ok {
		return 0, fmt.Errorf("%s requires an index", str(op, "op"))
	}
	return index, nil
}

func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func stateArg(in map[string]interface{}) builder.State {
	st := builder.State{
		BaseTable:      str(in, "baseTable"),
		DateColumn:     str(in, "dateColumn"),
		DateFrom:       str(in, "dateFrom"),
		DateTo:         str(in, "dateTo"),
		OrderColumn:    str(in, "orderColumn"),
		OrderDirection: str(in, "orderDirection"),
		Limit:          str(in, "limit"),
	}
	columns, _ := in["columns"].([]interface{})
	for _, c := range columns {
		if name, ok := c.(string); ok {
			st.Columns = append(st.Columns, name)
		}
	}
	joins, _ := in["joins"].([]interface{})
	for _, j := range joins {
		m, _ := j.(map[string]interface{})
		st.Joins = append(st.Joins, builder.Join{Table: str(m, "table")})
	}
	wheres, _ := in["wheres"].([]interface{})
	for _, w := range wheres {
		m, _ := w.(map[string]interface{})
		st.Wheres = append(st.Wheres, builder.Where{
			Column:   str(m, "column"),
			Operator: str(m, "operator"),
			Value:    str(m, "value"),
		})
	}
	return st
}

func stateMap(st builder.State) map[string]interface{} {
	joins := make([]interface{}, len(st.Joins))
	for i, j := range st.Joins {
		joins[i] = map[string]interface{}{"table": j.Table, "alias": j.Alias, "type": j.Type, "on": j.On}
	}
	wheres := make([]interface{}, len(st.Wheres))
	for i, w := range st.Wheres {
		wheres[i] = map[string]interface{}{"column": w.Column, "operator": w.Operator, "value": w.Value}
	}
	columns := st.Columns
	if columns == nil {
		columns = []string{}
	}
	return map[string]interface{}{
		"baseTable":      st.BaseTable,
		"baseAlias":      st.BaseAlias,
		"columns":        columns,
		"joins":          joins,
		"wheres":         wheres,
		"dateColumn":     st.DateColumn,
		"dateFrom":       st.DateFrom,
		"dateTo":         st.DateTo,
		"orderColumn":    st.OrderColumn,
		"orderDirection": st.OrderDirection,
		"limit":          st.Limit,
	}
}

func savedQueryMap(q savedquery.Query) map[string]interface{} {
	return map[string]interface{}{
		"id":       q.ID,
		"name":     q.Name,
		"sql":      q.SQL,
		"date":     q.Date,
		"category": q.Category,
		"template": q.Template,
	}
}

func (s *Service) resolveSaveQuery(p graphql.ResolveParams) (interface{}, error) {
	in, _ := p.Args["input"].(map[string]interface{})
	q, err := s.Saved.Save(p.Context, savedquery.Query{
		Name:     str(in, "name"),
		SQL:      str(in, "sql"),
		Category: str(in, "category"),
		Template: str(in, "template"),
	})
	if err != nil {
		return nil, err
	}
	return savedQueryMap(q), nil
}

func (s *Service) resolveGenerateSQL(p graphql.ResolveParams) (interface{}, error) {
	if s.Generator == nil {
		return nil, errors.New(msgAIDisabled)
	}
	prompt, _ := p.Args["prompt"].(string)
	sql, err := s.Generator.Generate(p.Context, prompt)
	if err != nil {
		_, msg := generateStatus(err)
		return nil, errors.New(msg)
	}
	return map[string]interface{}{"sql": sql, "provider": s.Generator.Provider()}, nil
}

func (s *Service) resolveNotify(p graphql.ResolveParams) (interface{}, error) {
	channels := stringsArg(p.Args["channels"])
	message, _ := p.Args["message"].(string)
	results, err := s.Notifier.Post(p.Context, channels, notify.Message{Text: message})
	if errors.Is(err, notify.ErrNoChannels) {
		return nil, errors.New(msgNoChannels)
	}
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, len(results))
	for i, r := range results {
		list[i] = map[string]interface{}{
			"channel": r.Channel,
			"success": r.Success,
			"error":   optional(r.Error, r.Error != ""),
		}
	}
	return map[string]interface{}{"success": notify.AllDelivered(results), "results": list}, nil
}

func stringsArg(arg interface{}) []string {
	items, _ := arg.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v, ok := item.(string); ok {
			out = append(out, v)
		}
	}
	return out
}

// optional maps an absent value to GraphQL null.
func optional(v string, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

func (s *Service) resolveDashboard(p graphql.ResolveParams) (interface{}, error) {
	records, err := s.Source.Fetch(p.Context)
	if err != nil {
		return nil, err
	}

	f := dashboard.DefaultFilter(records)
	sortBy, ascending := dashboard.SortByClaims, false
	if in, ok := p.Args["filter"].(map[string]interface{}); ok {
		if v := str(in, "start"); v != "" {
			f.Start = v
		}
		if v := str(in, "end"); v != "" {
			f.End = v
		}
		if _, set := in["insurers"]; set {
			f = dashboard.NewFilter(f.Start, f.End, stringsArg(in["insurers"]))
		}
		if v := str(in, "sortBy"); v != "" {
			sortBy = dashboard.SortKey(v)
		}
		ascending, _ = in["ascending"].(bool)
	}
	if sortBy != dashboard.SortByClaims && sortBy != dashboard.SortByName {
		return nil, fmt.Errorf("unknown sort key %q", sortBy)
	}

	filtered := f.Apply(records)
	summary := dashboard.Summarize(filtered)
	var peak interface{}
	if summary.Peak != nil {
		peak = dailyMap(*summary.Peak)
	}

	daily := dashboard.DailyTotals(filtered)
	dailyList := make([]interface{}, len(daily))
	for i, d := range daily {
		dailyList[i] = dailyMap(d)
	}
	totals := dashboard.InsurerTotals(filtered, sortBy, ascending)
	totalList := make([]interface{}, len(totals))
	for i, t := range totals {
		totalList[i] = map[string]interface{}{"insurer": t.Insurer, "total": t.Total, "days": t.Days}
	}
	trend := dashboard.Trend(filtered)
	trendList := make([]interface{}, len(trend))
	for i, t := range trend {
		trendList[i] = map[string]interface{}{"date": t.Date, "counts": countList(t.Counts)}
	}

	return map[string]interface{}{
		"start":       f.Start,
		"end":         f.End,
		"insurers":    f.SelectedInsurers(),
		"allInsurers": dashboard.AllInsurers(records),
		"summary": map[string]interface{}{
			"total":   summary.Total,
			"average": summary.Average,
			"days":    summary.Days,
			"peak":    peak,
		},
		"daily":         dailyList,
		"insurerTotals": totalList,
		"trend":         trendList,
		"slackMessage":  dashboard.SummaryMessage(records, f),
	}, nil
}

func dailyMap(d dashboard.DailyTotal) map[string]interface{} {
	return map[string]interface{}{"date": d.Date, "total": d.Total}
}

// countList flattens an insurer count map, sorted by insurer name.
func countList(counts map[string]int) []interface{} {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]interface{}, len(names))
	for i, name := range names {
		out[i] = map[string]interface{}{"insurer": name, "count": counts[name]}
	}
	return out
}

// insurersArg returns the requested insurers, or every insurer when the
// argument is absent.
func insurersArg(args map[string]interface{}, records []claims.Record) []string {
	if _, set := args["insurers"]; set {
		return stringsArg(args["insurers"])
	}
	return dashboard.AllInsurers(records)
}

func periodsArg(arg interface{}) []dashboard.Period {
	items, _ := arg.([]interface{})
	out := make([]dashboard.Period, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		out = append(out, dashboard.NewPeriod(str(m, "label"), str(m, "from"), str(m, "to")))
	}
	return out
}

func (s *Service) resolveComparison(p graphql.ResolveParams) (interface{}, error) {
	records, err := s.Source.Fetch(p.Context)
	if err != nil {
		return nil, err
	}
	insurers := insurersArg(p.Args, records)

	var stats []dashboard.PeriodStats
	var overlay []dashboard.OverlayRow
	mode, _ := p.Args["mode"].(string)
	switch mode {
	case modeMonth:
		months := stringsArg(p.Args["months"])
		if _, set := p.Args["months"]; !set {
			months = dashboard.DefaultMonths(records)
		}
		stats = dashboard.CompareMonths(records, insurers, months)
		overlay = dashboard.MonthOverlay(stats)
	case modeCustom:
		periods := periodsArg(p.Args["periods"])
		if len(periods) == 0 {
			periods = dashboard.DefaultCustomPeriods(records)
		}
		stats = dashboard.ComparePeriods(records, insurers, periods)
		overlay = dashboard.PeriodOverlay(stats)
	default:
		return nil, fmt.Errorf("unknown comparison mode %q", mode)
	}

	overlayList := make([]interface{}, len(overlay))
	for i, row := range overlay {
		overlayList[i] = map[string]interface{}{"day": row.Day, "label": row.Label(), "values": row.Values}
	}
	rows := dashboard.InsurerComparison(stats, insurers)
	rowList := make([]interface{}, len(rows))
	for i, row := range rows {
		deltas := make([]interface{}, len(row.Deltas))
		for j, d := range row.Deltas {
			deltas[j] = floatOrNil(d)
		}
		rowList[i] = map[string]interface{}{"insurer": row.Insurer, "values": row.Values, "deltas": deltas}
	}

	return map[string]interface{}{
		"mode":     mode,
		"periods":  statsList(stats),
		"overlay":  overlayList,
		"insurers": rowList,
	}, nil
}

func (s *Service) resolveReport(p graphql.ResolveParams) (interface{}, error) {
	records, err := s.Source.Fetch(p.Context)
	if err != nil {
		return nil, err
	}
	insurers := insurersArg(p.Args, records)

	periods := periodsArg(p.Args["periods"])
	if preset, _ := p.Args["preset"].(string); preset != "" {
		_, latest := dashboard.DateBounds(records)
		if latest == "" {
			latest = time.Now().Format("2006-01-02")
		}
		periods, err = dashboard.PresetPeriods(dashboard.Preset(preset), latest)
		if err != nil {
			return nil, err
		}
	}
	if len(periods) == 0 {
		return nil, errors.New("a preset or at least one period is required")
	}

	stats := dashboard.ComparePeriods(records, insurers, periods)
	return map[string]interface{}{
		"periods": statsList(stats),
		"message": dashboard.ReportMessage(stats),
	}, nil
}

func statsList(stats []dashboard.PeriodStats) []interface{} {
	out := make([]interface{}, len(stats))
	for i, st := range stats {
		out[i] = map[string]interface{}{
			"label":     st.Label,
			"from":      st.From,
			"to":        st.To,
			"total":     st.Total,
			"average":   st.Average,
			"days":      st.Days,
			"byInsurer": countList(st.ByInsurer),
			"delta":     floatOrNil(st.Delta),
			"avgDelta":  floatOrNil(st.AvgDelta),
		}
	}
	return out
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func (s *Service) resolveSchemaDrift(graphql.ResolveParams) (interface{}, error) {
	r := s.Drift()
	missing := make([]interface{}, 0, len(r.Drift.MissingColumns))
	tables := make([]string, 0, len(r.Drift.MissingColumns))
	for table := range r.Drift.MissingColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		missing = append(missing, map[string]interface{}{"table": table, "columns": r.Drift.MissingColumns[table]})
	}
	missingTables := r.Drift.MissingTables
	if missingTables == nil {
		missingTables = []string{}
	}

	var checkedAt interface{}
	if !r.CheckedAt.IsZero() {
		checkedAt = r.CheckedAt.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"checked":        r.Checked,
		"missingTables":  missingTables,
		"missingColumns": missing,
		"error":          optional(r.Error, r.Error != ""),
		"checkedAt":      checkedAt,
	}, nil
}
