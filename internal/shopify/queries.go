package shopify

// ProductsPageSize is the page size used when walking the product list.
const ProductsPageSize = 100

// ProductsWithMetafieldsQuery fetches a page of products with their first
// metafields and variants.
const ProductsWithMetafieldsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      cursor
      node {
        id
        title
        metafields(first: 10) {
          edges {
            node {
              id
              namespace
              key
              value
              type
            }
          }
        }
        variants(first: 10) {
          edges {
            node {
              id
              title
            }
          }
        }
      }
    }
  }
}
`

// MetafieldDefinitionsQuery checks whether a product metafield definition exists.
const MetafieldDefinitionsQuery = `
query metafieldDefinitions($namespace: String!, $key: String!) {
  metafieldDefinitions(ownerType: PRODUCT, first: 1, namespace: $namespace, key: $key) {
    edges {
      node {
        id
        name
      }
    }
  }
}
`

// AccessScopesQuery lists the scopes granted to the calling token.
const AccessScopesQuery = `
query accessScopes {
  currentAppInstallation {
    accessScopes {
      handle
    }
  }
}
`
