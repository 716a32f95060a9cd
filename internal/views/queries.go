//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

// Every query takes $1 start date, $2 end date (either may be NULL) and
// $3 row limit.

const detailWindow = `($1::date IS NULL OR sale_date >= $1::date)
      AND ($2::date IS NULL OR sale_date <= $2::date)`

const periodWindow = `($1::date IS NULL OR period_start >= $1::date)
      AND ($2::date IS NULL OR period_end <= $2::date)`

var builtin = []*View{
	{
		Name:        "sales_trends",
		Description: "Sales summary totals per reporting period",
		Table:       "sales_summary",
		Query: `
    SELECT period_start, period_end,
           SUM(amount) FILTER (WHERE sales_type = 'Sale')     AS sales,
           SUM(amount) FILTER (WHERE sales_type = 'Tip')      AS tips,
           SUM(amount) FILTER (WHERE sales_type = 'Discount') AS discounts,
           SUM(amount) FILTER (WHERE sales_type = 'Refund')   AS refunds,
           SUM(amount) FILTER (WHERE sales_type = 'Tax')      AS tax
    FROM sales_summary
    WHERE ` + periodWindow + `
    GROUP BY period_start, period_end
    ORDER BY period_start DESC
    LIMIT $3`,
	},
	{
		Name:        "revenue_by_category",
		Description: "Category revenue per reporting period",
		Table:       "category_sales",
		Query: `
    SELECT category, SUM(revenue) AS total_revenue,
           COUNT(DISTINCT period_start) AS periods
    FROM category_sales
    WHERE ` + periodWindow + `
    GROUP BY category
    ORDER BY total_revenue DESC, category
    LIMIT $3`,
	},
	{
		Name:        "top_items",
		Description: "Best selling items by gross sales",
		Table:       "detail_items",
		Query: `
    SELECT item_name, category, COUNT(*) AS units,
           SUM(gross_sales) AS gross_sales
    FROM detail_items
    WHERE ` + detailWindow + `
    GROUP BY item_name, category
    ORDER BY gross_sales DESC, item_name
    LIMIT $3`,
	},
	{
		Name:        "revenue_by_weekday",
		Description: "Gross sales and average daily sales by day of week",
		Table:       "detail_items",
		Query: `
    WITH daily AS (
        SELECT sale_date, SUM(gross_sales) AS revenue
        FROM detail_items
        WHERE ` + detailWindow + `
        GROUP BY sale_date
    )
    SELECT EXTRACT(ISODOW FROM sale_date)::int AS dow,
           trim(to_char(sale_date, 'Day')) AS weekday,
           SUM(revenue) AS revenue,
           ROUND(AVG(revenue), 2) AS avg_daily_revenue
    FROM daily
    GROUP BY 1, 2
    ORDER BY 1
    LIMIT $3`,
	},
	{
		Name:        "peak_hours",
		Description: "Order volume and sales by hour of day",
		Table:       "detail_items",
		Query: `
    SELECT EXTRACT(HOUR FROM sale_time)::int AS hour,
           COUNT(DISTINCT COALESCE(transaction_id, id::text)) AS orders,
           SUM(gross_sales) AS gross_sales
    FROM detail_items
    WHERE ` + detailWindow + `
    GROUP BY 1
    ORDER BY orders DESC, hour
    LIMIT $3`,
	},
	{
		Name:        "top_returning_customers",
		Description: "Customers who came back on more than one day",
		Table:       "customers",
		Query: `
    SELECT c.customer_name,
           COUNT(DISTINCT d.sale_date) AS visits,
           COUNT(DISTINCT d.transaction_id) AS orders,
           SUM(d.gross_sales) AS total_spent
    FROM customers c
    JOIN detail_items d
      ON d.customer_id = c.customer_id AND d.customer_name = c.customer_name
    WHERE ` + detailWindow + `
    GROUP BY c.customer_id, c.customer_name
    HAVING COUNT(DISTINCT d.sale_date) > 1
    ORDER BY visits DESC, total_spent DESC
    LIMIT $3`,
	},
	{
		Name:        "avg_items_per_order",
		Description: "Average items and order value per day",
		Table:       "detail_items",
		Query: `
    WITH orders AS (
        SELECT sale_date, transaction_id, COUNT(*) AS items,
               SUM(gross_sales) AS order_value
        FROM detail_items
        WHERE transaction_id IS NOT NULL AND ` + detailWindow + `
        GROUP BY sale_date, transaction_id
    )
    SELECT sale_date AS date, COUNT(*) AS orders,
           ROUND(AVG(items), 2) AS avg_items,
           ROUND(AVG(order_value), 2) AS avg_order_value
    FROM orders
    GROUP BY sale_date
    ORDER BY sale_date DESC
    LIMIT $3`,
	},
	{
		Name:        "aov_by_payment_method",
		Description: "Average order value by card brand",
		Table:       "detail_items",
		Query: `
    WITH orders AS (
        SELECT COALESCE(card_brand, 'Unknown') AS payment_method,
               transaction_id, SUM(gross_sales) AS order_value
        FROM detail_items
        WHERE transaction_id IS NOT NULL AND ` + detailWindow + `
        GROUP BY 1, 2
    )
    SELECT payment_method, COUNT(*) AS orders,
           ROUND(AVG(order_value), 2) AS avg_order_value
    FROM orders
    GROUP BY payment_method
    ORDER BY avg_order_value DESC
    LIMIT $3`,
	},
	{
		Name:        "modifier_lift",
		Description: "Average line value with and without modifiers",
		Table:       "detail_items",
		Query: `
    SELECT CASE WHEN modifiers_applied IS NULL THEN 'no modifiers'
                ELSE 'with modifiers' END AS modifiers,
           COUNT(*) AS lines,
           ROUND(AVG(gross_sales), 2) AS avg_gross_sales
    FROM detail_items
    WHERE ` + detailWindow + `
    GROUP BY 1
    ORDER BY 1
    LIMIT $3`,
	},
	{
		Name:        "bundle_effect",
		Description: "Order value of single-item versus multi-item orders",
		Table:       "detail_items",
		Query: `
    WITH orders AS (
        SELECT transaction_id, COUNT(*) AS items, SUM(gross_sales) AS order_value
        FROM detail_items
        WHERE transaction_id IS NOT NULL AND ` + detailWindow + `
        GROUP BY transaction_id
    )
    SELECT CASE WHEN items > 1 THEN 'bundle' ELSE 'single' END AS order_type,
           COUNT(*) AS orders,
           ROUND(AVG(order_value), 2) AS avg_order_value
    FROM orders
    GROUP BY 1
    ORDER BY 1
    LIMIT $3`,
	},
	{
		Name:        "low_traffic_alerts",
		Description: "Days with fewer than half the average order count",
		Table:       "detail_items",
		Query: `
    WITH daily AS (
        SELECT sale_date AS date,
               COUNT(DISTINCT COALESCE(transaction_id, id::text)) AS orders
        FROM detail_items
        WHERE ` + detailWindow + `
        GROUP BY sale_date
    ), baseline AS (
        SELECT AVG(orders) AS avg_orders FROM daily
    )
    SELECT d.date, d.orders, 'low' AS traffic_flag
    FROM daily d, baseline b
    WHERE d.orders < b.avg_orders * 0.5
    ORDER BY d.date DESC
    LIMIT $3`,
	},
}

func init() {
	for _, v := range builtin {
		Register(v)
	}
}
