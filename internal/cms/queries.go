package cms

// GROQ queries. Projections rename fields to the shapes in package types.

const projectFields = `{
  _id,
  title,
  "slug": slug.current,
  description,
  tagline,
  category,
  tools,
  client,
  role,
  duration,
  year,
  clientReview,
  thumbnail,
  heroImage,
  content,
  featured,
  order
}`

const (
	projectsQuery = `*[_type == "project" && defined(slug.current)] | order(order asc, year desc) ` + projectFields

	featuredProjectsQuery = `*[_type == "project" && featured == true && defined(slug.current)] | order(order asc, year desc) ` + projectFields

	projectBySlugQuery = `*[_type == "project" && slug.current == $slug][0] ` + projectFields

	siteSettingsQuery = `*[_type == "siteSettings"][0] {
  name,
  tagline,
  description,
  email,
  phone,
  social,
  stats
}`

	testimonialsQuery = `*[_type == "testimonial"] | order(order asc) {
  _id,
  quote,
  author,
  role,
  company,
  image,
  order
}`

	pricingTiersQuery = `*[_type == "pricingTier"] | order(order asc) {
  "id": coalesce(id.current, id),
  name,
  priceRange,
  popular,
  delivery,
  features,
  order
}`
)
