package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the read-only GraphQL schema for the admin
// frontend.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	plotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plot",
		Fields: graphql.Fields{
			"plot_id":            &graphql.Field{Type: graphql.Int},
			"unique_plot_no":     &graphql.Field{Type: graphql.String},
			"zoning_class":       &graphql.Field{Type: graphql.String},
			"area_sqm":           &graphql.Field{Type: graphql.Float},
			"application_status": &graphql.Field{Type: graphql.String},
		},
	})

	applicationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Application",
		Fields: graphql.Fields{
			"application_id":  &graphql.Field{Type: graphql.Int},
			"unique_plot_no":  &graphql.Field{Type: graphql.String},
			"applicant_name":  &graphql.Field{Type: graphql.String},
			"submission_date": &graphql.Field{Type: graphql.String},
			"gis_cleared":     &graphql.Field{Type: graphql.Boolean},
			"status":          &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plots": &graphql.Field{
				Type:        graphql.NewList(plotType),
				Description: "List all plots with their derived application status",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Plots.List(p.Context)
				},
			},
			"plot": &graphql.Field{
				Type:        plotType,
				Description: "Get a plot by its business key",
				Args: graphql.FieldConfigArgument{
					"plot_no": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					plotNo := p.Args["plot_no"].(string)
					return deps.Plots.GetByPlotNo(p.Context, plotNo)
				},
			},
			"applications": &graphql.Field{
				Type:        graphql.NewList(applicationType),
				Description: "Applications filed against a plot, newest first",
				Args: graphql.FieldConfigArgument{
					"plot_no": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					plotNo := p.Args["plot_no"].(string)
					return deps.Applications.ListByPlot(p.Context, plotNo)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
